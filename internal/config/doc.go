// Package config loads quill's settings.
//
// Settings are layered, higher layers overriding lower ones:
//
//	┌─────────────────────────────┐
//	│  6. Overrides (Set)         │  ← command-line flags
//	├─────────────────────────────┤
//	│  5. Environment (QUILL_*)   │
//	├─────────────────────────────┤
//	│  4. Explicit file           │  ← --config path
//	├─────────────────────────────┤
//	│  3. Project file            │  ← ./.quill.{toml,yaml,json}
//	├─────────────────────────────┤
//	│  2. User file               │  ← ~/.config/quill/config.{toml,yaml,json}
//	├─────────────────────────────┤
//	│  1. Built-in defaults       │
//	└─────────────────────────────┘
//
// Files may be TOML, YAML or JSON; see the loader sub-package.
//
//	cfg, err := config.Load(config.WithProjectDir("."))
//	if err != nil {
//		return err
//	}
//	if err := cfg.Validate(); err != nil {
//		return err
//	}
//	e := engine.New(cfg.EngineOptions()...)
//
// Settings are addressed by dot-separated paths such as
// "editor.tabWidth". Section accessors like Editor return typed
// snapshots with defaults filled in.
package config
