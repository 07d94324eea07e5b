// Package config loads the packidx configuration with Viper.
//
// The file lives at $XDG_CONFIG_HOME/packidx/config.yaml unless --config or
// PACKIDX_CONFIG_DIR points elsewhere:
//
//	version: 1
//	catalog_paths:
//	  - ~/packs/index
//	filter:
//	  all_latest: false
//	  excluded: [Vendor.OldDFP]
//	  use_latest: [Keil.STM32F4xx_DFP]
//	  predicate: 'installed || vendor == "ARM"'
//	vendor_aliases:
//	  Acme Semi: Acme
//
// Every key can be overridden from the environment with the PACKIDX_ prefix
// and dots replaced by underscores (PACKIDX_FILTER_ALL_LATEST=true). List
// values are comma separated.
//
// [Load] validates what it reads; [Validate] returns all problems at once.
package config
