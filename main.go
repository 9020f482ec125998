package main

import (
	"fmt"

	"github.com/RobsonDevCode/depwatch/cmd"
	cache "github.com/RobsonDevCode/depwatch/internal/caching"
	"github.com/RobsonDevCode/depwatch/internal/classifier"
	client "github.com/RobsonDevCode/depwatch/internal/clients"
	"github.com/RobsonDevCode/depwatch/internal/configuration"
	"github.com/RobsonDevCode/depwatch/internal/fixer"
	"github.com/RobsonDevCode/depwatch/internal/scanner"
	npmscanner "github.com/RobsonDevCode/depwatch/internal/scanner/npm"
	pipscanner "github.com/RobsonDevCode/depwatch/internal/scanner/pip"
	fixservice "github.com/RobsonDevCode/depwatch/internal/services/fixService"
	scanservice "github.com/RobsonDevCode/depwatch/internal/services/scanService"
	"github.com/sirupsen/logrus"
)

func main() {

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	config, err := configuration.Load()
	if err != nil {
		fmt.Printf("error starting command line: %s", err.Error())
		return
	}

	cacheInstance := cache.Cache{}

	npmRegistryClient, err := client.NewNpmRegistryClient(config, &cacheInstance, logger)
	if err != nil {
		fmt.Printf("error starting command line: %s", err.Error())
		return
	}

	pypiRegistryClient, err := client.NewPypiRegistryClient(config, &cacheInstance, logger)
	if err != nil {
		fmt.Printf("error starting command line: %s", err.Error())
		return
	}

	osvClient := client.NewOsvClient(config, &cacheInstance, logger)

	//registration order decides which manifest wins when a project holds
	//more than one
	scanners := []scanner.ProjectScanner{
		npmscanner.NewNpmScanner(npmRegistryClient, logger),
		pipscanner.NewPipScanner(pypiRegistryClient, osvClient, logger),
	}

	updateClassifier := classifier.NewClassifier(config.ScanSettings.MaxConcurrentLookups, logger)
	manifestFixer := fixer.NewFixer(logger)

	scanProcessor := scanservice.NewScanProcessor(scanners, updateClassifier, logger)
	fixProcessor := fixservice.NewFixProcessor(scanners, updateClassifier, manifestFixer, logger)

	// cant DI directly into the command so we use a setter
	cmd.SetLogger(logger)
	cmd.SetConfig(config)
	cmd.SetScanService(scanProcessor)
	cmd.SetFixService(fixProcessor)
	cmd.Execute()
}
