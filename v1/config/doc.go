// Package config loads the application configuration with koanf and hands each
// package its section through fx.
//
// Example:
//
//	cfg, err := config.Load(os.Getenv("RAG_CONFIG_FILE"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	app := fx.New(config.Module(cfg), logger.FXModule, ...)
package config
