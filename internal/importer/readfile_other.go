//go:build !linux

package importer

import "os"

func adviseSequential(*os.File) {}
