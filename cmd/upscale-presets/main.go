package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/cwbudde/algo-upscale/preset"
)

func main() {
	dir := flag.String("dir", "", "Preset directory (default ~/.algo-upscale/presets)")
	list := flag.Bool("list", false, "List stored presets")
	show := flag.String("show", "", "Print the named preset as JSON")
	del := flag.String("delete", "", "Delete the named preset")
	flag.Parse()

	store := preset.NewStore(*dir)

	switch {
	case *list:
		names, err := store.List()
		if err != nil {
			die("failed to list presets: %v", err)
		}
		if len(names) == 0 {
			fmt.Println("No presets stored.")
			return
		}
		for _, name := range names {
			fmt.Println(name)
		}
	case *show != "":
		f, err := store.Load(*show)
		if err != nil {
			if errors.Is(err, preset.ErrNotFound) {
				die("Preset '%s' not found", *show)
			}
			die("failed to load preset: %v", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(f); err != nil {
			die("json encode failed: %v", err)
		}
	case *del != "":
		deleted, err := store.Delete(*del)
		if err != nil {
			die("failed to delete preset: %v", err)
		}
		if deleted {
			fmt.Printf("Preset '%s' deleted\n", *del)
		} else {
			fmt.Printf("Preset '%s' not found\n", *del)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
