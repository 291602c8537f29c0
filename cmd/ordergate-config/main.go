package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oarkflow/ordergate"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "convert":
		handleConvert()
	case "validate":
		handleValidate()
	case "explain":
		handleExplain()
	default:
		fmt.Printf("Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("ordergate-config - Configuration tool for ordergate")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  ordergate-config convert <input> <output>     - Convert between formats")
	fmt.Println("  ordergate-config validate <file>              - Validate configuration")
	fmt.Println("  ordergate-config explain <config> <request>   - Evaluate a request and print the decision")
	fmt.Println()
	fmt.Println("Supported formats: .yaml, .yml, .json")
}

func handleConvert() {
	if len(os.Args) < 4 {
		fmt.Println("Usage: ordergate-config convert <input> <output>")
		os.Exit(1)
	}

	inputFile := os.Args[2]
	outputFile := os.Args[3]

	cfg, err := loadConfig(inputFile)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := saveConfig(cfg, outputFile); err != nil {
		fmt.Printf("Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Converted %s -> %s\n", inputFile, outputFile)
}

func handleValidate() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: ordergate-config validate <file>")
		os.Exit(1)
	}

	filename := os.Args[2]
	cfg, err := loadConfig(filename)
	if err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Configuration is valid\n")
	fmt.Printf("  Version: %d\n", cfg.Version)
	fmt.Printf("  Managers: %d\n", len(cfg.Managers))
	switch {
	case cfg.Identity.HMACSecret != "":
		fmt.Println("  Identity: HMAC")
	case cfg.Identity.RSAPublicKeyPEM != "":
		fmt.Println("  Identity: RSA")
	default:
		fmt.Println("  Identity: none")
	}
	fmt.Printf("  Role cache TTL: %dms\n", cfg.Engine.RoleCacheTTL)
	fmt.Printf("  Decision buffer: %d\n", cfg.Engine.DecisionBuffer)
}

// handleExplain builds an engine from the config's seed managers and runs a
// single JSON request through it with tracing on.
func handleExplain() {
	if len(os.Args) < 4 {
		fmt.Println("Usage: ordergate-config explain <config> <request>")
		os.Exit(1)
	}

	cfg, err := loadConfig(os.Args[2])
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	reqData, err := os.ReadFile(os.Args[3])
	if err != nil {
		fmt.Printf("Error reading request: %v\n", err)
		os.Exit(1)
	}
	var req ordergate.ExplainRequest
	if err := json.Unmarshal(reqData, &req); err != nil {
		fmt.Printf("Error parsing request: %v\n", err)
		os.Exit(1)
	}

	engine, err := cfg.BuildEngine(nil)
	if err != nil {
		fmt.Printf("Error building engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	decision, err := engine.ExplainRequest(context.Background(), &req)
	if err != nil {
		fmt.Printf("Error evaluating request: %v\n", err)
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(decision, "", "  ")
	fmt.Println(string(out))
	if !decision.Allowed {
		os.Exit(2)
	}
}

func loadConfig(filename string) (*ordergate.Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	loader := ordergate.NewConfigLoader()

	switch ext {
	case ".yaml", ".yml":
		return loader.LoadYAML(data)
	case ".json":
		return loader.LoadJSON(data)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}
}

func saveConfig(cfg *ordergate.Config, filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))

	var data []byte
	var err error

	switch ext {
	case ".yaml", ".yml":
		data, err = cfg.ToYAML()
	case ".json":
		data, err = cfg.ToJSON()
	default:
		return fmt.Errorf("unsupported file format: %s", ext)
	}

	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0644)
}
