package main

import (
	"log"

	"screen-cropper/src/screenshot"
)

func logDisplays() {
	displays, err := screenshot.NewSystem().Displays()
	if err != nil {
		log.Printf("MONITOR: enumeration failed: %v", err)
		return
	}
	for _, d := range displays {
		log.Printf("MONITOR: %s", d)
	}
}
