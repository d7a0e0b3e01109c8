// Copyright (C) 2026, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import "github.com/luxfi/resourcecache/cmd/rescache/cmd"

func main() {
	cmd.Execute()
}
