package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/AnyUserName/emotim-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.WithError(err).Error("emotim failed")
		os.Exit(1)
	}
}
