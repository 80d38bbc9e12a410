package main

import (
	"flag"
	"fmt"
	"os"
	"reflect"

	"github.com/chrissnell/aqimonitor/pkg/config"
)

func main() {
	var (
		yamlFile   = flag.String("yaml", "", "Path to YAML configuration file")
		sqliteFile = flag.String("sqlite", "", "Path to SQLite configuration file")
	)
	flag.Parse()

	if *yamlFile == "" || *sqliteFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -yaml <config.yaml> -sqlite <config.db>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("Configuration Comparison Test")
	fmt.Println("===========================")

	// Load YAML configuration
	fmt.Printf("Loading YAML configuration: %s\n", *yamlFile)
	yamlConfig, err := config.NewYAMLProvider(*yamlFile).LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading YAML config: %v\n", err)
		os.Exit(1)
	}

	// Load SQLite configuration
	fmt.Printf("Loading SQLite configuration: %s\n", *sqliteFile)
	sqliteProvider, err := config.NewSQLiteProvider(*sqliteFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating SQLite provider: %v\n", err)
		os.Exit(1)
	}
	defer sqliteProvider.Close()

	sqliteConfig, err := sqliteProvider.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading SQLite config: %v\n", err)
		os.Exit(1)
	}

	// config-convert stores the defaulted config, so compare like with like.
	// The generated station ID is the one field that cannot match.
	if yamlConfig.Monitor.StationID == "" {
		yamlConfig.Monitor.StationID = sqliteConfig.Monitor.StationID
	}
	yamlConfig.ApplyDefaults()
	sqliteConfig.ApplyDefaults()

	fmt.Println("\nComparison Results:")
	fmt.Println("==================")

	failed := 0
	failed += report("Monitor", yamlConfig.Monitor == sqliteConfig.Monitor, yamlConfig.Monitor, sqliteConfig.Monitor)
	failed += report("Sensor", reflect.DeepEqual(yamlConfig.Sensor, sqliteConfig.Sensor), yamlConfig.Sensor, sqliteConfig.Sensor)
	failed += report("LED", yamlConfig.LED == sqliteConfig.LED, yamlConfig.LED, sqliteConfig.LED)

	// Compare controllers
	fmt.Printf("\nControllers - YAML: %d, SQLite: %d\n", len(yamlConfig.Controllers), len(sqliteConfig.Controllers))
	if len(yamlConfig.Controllers) == len(sqliteConfig.Controllers) {
		fmt.Println("✓ Controller count matches")
		for i, yamlController := range yamlConfig.Controllers {
			sqliteController := sqliteConfig.Controllers[i]
			if compareControllers(yamlController, sqliteController) {
				fmt.Printf("✓ Controller %s matches\n", yamlController.Type)
			} else {
				fmt.Printf("✗ Controller %s differs\n", yamlController.Type)
				failed++
			}
		}
	} else {
		fmt.Println("✗ Controller count mismatch")
		failed++
	}

	if failed > 0 {
		fmt.Printf("\nTest completed with %d differences\n", failed)
		os.Exit(1)
	}
	fmt.Println("\nTest completed!")
}

func report(section string, match bool, yaml, sqlite any) int {
	if match {
		fmt.Printf("✓ %s configuration matches\n", section)
		return 0
	}
	fmt.Printf("✗ %s configuration differs\n", section)
	fmt.Printf("    YAML:   %+v\n", yaml)
	fmt.Printf("    SQLite: %+v\n", sqlite)
	return 1
}

func compareControllers(yaml, sqlite config.ControllerData) bool {
	if yaml.Type != sqlite.Type {
		return false
	}

	switch {
	case yaml.RESTServer != nil || sqlite.RESTServer != nil:
		return yaml.RESTServer != nil && sqlite.RESTServer != nil && *yaml.RESTServer == *sqlite.RESTServer
	case yaml.MQTT != nil || sqlite.MQTT != nil:
		return yaml.MQTT != nil && sqlite.MQTT != nil && *yaml.MQTT == *sqlite.MQTT
	}
	return true
}
