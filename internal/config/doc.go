// Package config loads launchtree settings.
//
// Settings are layered, each layer overriding the previous one:
//
//  1. built-in defaults (Default);
//  2. a YAML file: the --config path, else ./.launchtree.yaml, else
//     $XDG_CONFIG_HOME/launchtree/config.yaml;
//  3. LAUNCHTREE_* environment variables (LAUNCHTREE_LOG_LEVEL, LAUNCHTREE_CACHE_REDIS_URL, ...);
//  4. command-line flags, applied by the caller.
package config
