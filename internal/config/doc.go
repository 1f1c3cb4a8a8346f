// Package config loads chattools settings from the environment.
//
// Values come from, in increasing priority: built-in defaults (including the
// documented placeholder credentials), a .env file loaded with godotenv, and
// process environment variables. Command line flags are applied on top by the
// cmd package.
//
// Placeholder values keep the tools callable without any setup; operations
// that need a real key report a missing configuration error instead of calling
// the provider. Placeholders lists the keys that are still unset.
package config
