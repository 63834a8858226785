// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

/*
Package config loads probe settings profiles from YAML files, such as:

	interval: 500ms
	timeout: 2s
	count: 10
	ipv4: true
	native: true
	threshold: 80
	journal:
	  path: /var/log/pingbridge/journal.log
	  max_size_mb: 5
*/
package config
