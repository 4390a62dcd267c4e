package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"reflect"

	"github.com/dentalforms/formspec/internal/schema"
)

var (
	outputFormat = flag.String("format", "text", "Output format: text, json")
	ignoreOrder  = flag.Bool("ignore-order", false, "Compare by key only, ignoring field order")
	help         = flag.Bool("help", false, "Show help message")
)

func main() {
	flag.Parse()

	if *help {
		printHelp()
		return
	}

	if flag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "Error: two spec files required\n\n")
		printUsage()
		os.Exit(2)
	}

	result, err := compareSpecFiles(flag.Arg(0), flag.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if err := outputResults(result); err != nil {
		fmt.Fprintf(os.Stderr, "Error outputting results: %v\n", err)
		os.Exit(2)
	}

	if !result.Identical {
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("formspec_compare - diff two Modento Forms spec JSON files")
	fmt.Println()
	fmt.Println("Compares generated specs field by field: keys present in only one spec,")
	fmt.Println("and fields whose type, title, section, optional flag, or control differ.")
	fmt.Println()
	printUsage()
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -format        Output format: text (default), json")
	fmt.Println("  -ignore-order  Compare by key only, ignoring field order")
	fmt.Println("  -help          Show this help message")
	fmt.Println()
	fmt.Println("EXIT CODES:")
	fmt.Println("  0  specs are identical")
	fmt.Println("  1  specs differ")
	fmt.Println("  2  a spec could not be read")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  formspec_compare expected.json actual.json")
	fmt.Println("  formspec_compare -format json -ignore-order old.json new.json")
}

func printUsage() {
	fmt.Println("USAGE:")
	fmt.Println("  formspec_compare [OPTIONS] <spec_a.json> <spec_b.json>")
}

// FieldDiff describes one field present in both specs but not equal
type FieldDiff struct {
	Key     string   `json:"key"`
	Changes []string `json:"changes"`
}

// CompareResult is the full diff between two spec files
type CompareResult struct {
	PathA     string      `json:"path_a"`
	PathB     string      `json:"path_b"`
	Identical bool        `json:"identical"`
	OnlyInA   []string    `json:"only_in_a,omitempty"`
	OnlyInB   []string    `json:"only_in_b,omitempty"`
	Changed   []FieldDiff `json:"changed,omitempty"`
	// OrderDiffers is set when both specs hold the same keys in a different
	// sequence
	OrderDiffers bool `json:"order_differs,omitempty"`
}

func loadSpec(path string) (schema.Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	spec, err := schema.DecodeSpec(data)
	if err != nil {
		return nil, fmt.Errorf("cannot decode %s: %w", path, err)
	}
	return spec, nil
}

func compareSpecFiles(pathA, pathB string) (*CompareResult, error) {
	specA, err := loadSpec(pathA)
	if err != nil {
		return nil, err
	}
	specB, err := loadSpec(pathB)
	if err != nil {
		return nil, err
	}

	result := &CompareResult{PathA: pathA, PathB: pathB}

	byKeyA := indexByKey(specA)
	byKeyB := indexByKey(specB)

	for _, f := range specA {
		other, ok := byKeyB[f.Key]
		if !ok {
			result.OnlyInA = append(result.OnlyInA, f.Key)
			continue
		}
		if changes := diffFields(f, other); len(changes) > 0 {
			result.Changed = append(result.Changed, FieldDiff{Key: f.Key, Changes: changes})
		}
	}
	for _, f := range specB {
		if _, ok := byKeyA[f.Key]; !ok {
			result.OnlyInB = append(result.OnlyInB, f.Key)
		}
	}

	if !*ignoreOrder && len(result.OnlyInA) == 0 && len(result.OnlyInB) == 0 {
		for i := range specA {
			if specA[i].Key != specB[i].Key {
				result.OrderDiffers = true
				break
			}
		}
	}

	result.Identical = len(result.OnlyInA) == 0 && len(result.OnlyInB) == 0 &&
		len(result.Changed) == 0 && !result.OrderDiffers
	return result, nil
}

func indexByKey(spec schema.Spec) map[string]schema.Field {
	out := make(map[string]schema.Field, len(spec))
	for _, f := range spec {
		out[f.Key] = f
	}
	return out
}

func diffFields(a, b schema.Field) []string {
	var changes []string
	if a.Type != b.Type {
		changes = append(changes, fmt.Sprintf("type: %s != %s", a.Type, b.Type))
	}
	if a.Title != b.Title {
		changes = append(changes, fmt.Sprintf("title: %q != %q", a.Title, b.Title))
	}
	if a.Section != b.Section {
		changes = append(changes, fmt.Sprintf("section: %q != %q", a.Section, b.Section))
	}
	if a.Optional != b.Optional {
		changes = append(changes, fmt.Sprintf("optional: %t != %t", a.Optional, b.Optional))
	}
	if !reflect.DeepEqual(a.Control, b.Control) {
		changes = append(changes, "control differs")
	}
	return changes
}

func outputResults(result *CompareResult) error {
	switch *outputFormat {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	case "text":
		return outputText(result)
	default:
		return fmt.Errorf("unsupported output format: %s", *outputFormat)
	}
}

func outputText(result *CompareResult) error {
	if result.Identical {
		fmt.Printf("Specs are identical: %s == %s\n", result.PathA, result.PathB)
		return nil
	}

	fmt.Printf("Specs differ: %s vs %s\n\n", result.PathA, result.PathB)

	if len(result.OnlyInA) > 0 {
		fmt.Printf("Only in %s:\n", result.PathA)
		for _, key := range result.OnlyInA {
			fmt.Printf("  - %s\n", key)
		}
		fmt.Println()
	}

	if len(result.OnlyInB) > 0 {
		fmt.Printf("Only in %s:\n", result.PathB)
		for _, key := range result.OnlyInB {
			fmt.Printf("  + %s\n", key)
		}
		fmt.Println()
	}

	if len(result.Changed) > 0 {
		fmt.Println("Changed fields:")
		for _, d := range result.Changed {
			fmt.Printf("  ~ %s\n", d.Key)
			for _, c := range d.Changes {
				fmt.Printf("      %s\n", c)
			}
		}
		fmt.Println()
	}

	if result.OrderDiffers {
		fmt.Println("Field order differs (same keys, different sequence)")
	}

	return nil
}

func init() {
	flag.Usage = printHelp
}
