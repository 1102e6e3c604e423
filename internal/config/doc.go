// Package config provides configuration parsing for navcore hosts.
//
// The configuration is stored in navcore.json next to the application.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "base": "/app",
//	  "mode": "remote",
//	  "manifest": "routes.yaml",
//	  "linkActiveClass": "active",
//	  "devtools": {
//	    "addr": "localhost:7070"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "myapp"
//	  },
//	  "tracing": {
//	    "enabled": true
//	  },
//	  "logLevel": "debug"
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Devtools:", cfg.Devtools.Addr)
package config
