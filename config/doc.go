// Package config loads supervisor workflow definitions from YAML and builds
// runnable workflows from them. The file declares the topology (workflow
// name, supervisor settings, worker prompts) with ${VAR} environment
// expansion; models and tools are supplied in code via Build.
package config
