// Package config loads the gateway's YAML configuration file.
//
// Two fields are polymorphic to keep hand-written files short: "guest"
// is either a boolean or a full account mapping, and each entry of
// "hooks" is a script path, a {script, options} mapping, or a list of
// either. ${ENV_VAR} references anywhere in the file are expanded before
// parsing.
package config
