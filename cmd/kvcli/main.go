// Copyright (c) 2026 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// The kvcli tool sends a single command to a kvloop server:
//
//	kvcli [-addr host:port] get KEY
//	kvcli [-addr host:port] set KEY VALUE
//	kvcli [-addr host:port] del KEY
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/aristanetworks/glog"

	"github.com/aristanetworks/kvloop/client"
	"github.com/aristanetworks/kvloop/server"
)

var addrFlag = flag.String("addr", server.DefaultAddr, "Server address")

var retryFlag = flag.Duration("retry", 0,
	"Keep retrying the connection with backoff for this long (0 tries once)")

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [flags] get|set|del KEY [VALUE]\n", os.Args[0])
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	flag.Usage = usage
	flag.Parse()
	args := flag.Args()
	if len(args) < 2 {
		usage()
	}

	var opts []client.Option
	if *retryFlag > 0 {
		opts = append(opts, client.WithRetry(*retryFlag))
	}
	opts = append(opts, client.WithDialTimeout(5*time.Second))
	c, err := client.Dial(*addrFlag, opts...)
	if err != nil {
		glog.Fatal(err)
	}
	defer c.Close()

	switch cmd := args[0]; {
	case cmd == "get" && len(args) == 2:
		val, ok, err := c.Get(args[1])
		if err != nil {
			glog.Fatal(err)
		}
		if !ok {
			fmt.Println("(nil)")
			os.Exit(1)
		}
		fmt.Printf("%s\n", val)
	case cmd == "set" && len(args) == 3:
		if err := c.Set(args[1], []byte(args[2])); err != nil {
			glog.Fatal(err)
		}
	case cmd == "del" && len(args) == 2:
		if err := c.Del(args[1]); err != nil {
			glog.Fatal(err)
		}
	default:
		usage()
	}
}
