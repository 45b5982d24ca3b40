// typeorder-graph loads a class-hierarchy description from YAML, seeds a
// default type-order engine with it, runs the hygiene passes, and prints the
// graph as Graphviz input. It exists to debug hierarchies the checker is fed.
//
// Usage:
//
//	typeorder-graph [-check] [-dump] [-snapshot graph.db] hierarchy.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/pyrite-check/pyrite/internal/config"
	"github.com/pyrite-check/pyrite/internal/typeorder"
	"github.com/pyrite-check/pyrite/internal/typeorder/store"
	"github.com/pyrite-check/pyrite/internal/typesystem"
)

// Hierarchy is the YAML shape the tool consumes.
type Hierarchy struct {
	Classes []ClassDescription `yaml:"classes"`
}

type ClassDescription struct {
	Name      string                `yaml:"name"`
	Variables []VariableDescription `yaml:"variables"`
	Bases     []BaseDescription     `yaml:"bases"`
}

type VariableDescription struct {
	Name     string `yaml:"name"`
	Variance string `yaml:"variance"`
	Bound    string `yaml:"bound"`
}

type BaseDescription struct {
	Name       string   `yaml:"name"`
	Parameters []string `yaml:"parameters"`
}

func main() {
	check := flag.Bool("check", false, "run the integrity check after loading")
	dump := flag.Bool("dump", false, "dump the parsed hierarchy description")
	snapshot := flag.String("snapshot", "", "save the frozen graph to a SQLite snapshot")
	flag.Parse()

	if flag.NArg() != 1 {
		fail("expected exactly one hierarchy file")
	}

	content, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fail("%v", err)
	}

	var hierarchy Hierarchy
	if err := yaml.Unmarshal(content, &hierarchy); err != nil {
		fail("parsing %s: %v", flag.Arg(0), err)
	}
	if *dump {
		spew.Fdump(os.Stderr, hierarchy)
	}

	engine, err := buildEngine(hierarchy)
	if err != nil {
		fail("%v", err)
	}

	if *check {
		if err := engine.CheckIntegrity(); err != nil {
			fail("%v", err)
		}
		fmt.Fprintln(os.Stderr, "integrity ok")
	}

	if *snapshot != "" {
		db, err := store.Open(*snapshot)
		if err != nil {
			fail("%v", err)
		}
		defer db.Close()
		if err := store.Save(context.Background(), db, engine.Tables()); err != nil {
			fail("%v", err)
		}
	}

	fmt.Print(engine.ToDot())
}

func buildEngine(hierarchy Hierarchy) (*typeorder.Engine, error) {
	engine := typeorder.Default()
	generic := typesystem.Primitive{Name: config.TypingGenericName}

	// First pass inserts every class so connections never hit an absent
	// endpoint.
	for _, class := range hierarchy.Classes {
		engine.Insert(typesystem.Primitive{Name: class.Name})
	}

	var annotations []typesystem.Type
	for _, class := range hierarchy.Classes {
		primitive := typesystem.Primitive{Name: class.Name}
		annotations = append(annotations, primitive)

		declared := map[string]typesystem.Variable{}
		var variables []typesystem.Type
		for _, description := range class.Variables {
			variable, err := parseVariable(description)
			if err != nil {
				return nil, fmt.Errorf("class %s: %w", class.Name, err)
			}
			declared[variable.Name] = variable
			variables = append(variables, variable)
		}
		if len(variables) > 0 {
			engine.Connect(primitive, generic, variables...)
		}

		for _, base := range class.Bases {
			parameters := make([]typesystem.Type, len(base.Parameters))
			for i, parameter := range base.Parameters {
				if variable, ok := declared[parameter]; ok {
					parameters[i] = variable
				} else {
					parameters[i] = typesystem.Primitive{Name: parameter}
				}
			}
			engine.Connect(primitive, typesystem.Primitive{Name: base.Name}, parameters...)
		}
		engine.Connect(typesystem.Bottom, primitive)
	}

	engine.Deduplicate(annotations)
	engine.RemoveExtraEdges(typesystem.Bottom, typesystem.Top, annotations)
	engine.ConnectAnnotationsToTop(typesystem.Top, annotations)
	engine.Normalize()
	return engine, nil
}

func parseVariable(description VariableDescription) (typesystem.Variable, error) {
	variable := typesystem.Variable{Name: description.Name}
	switch description.Variance {
	case "", "invariant":
		variable.Variance = typesystem.Invariant
	case "covariant":
		variable.Variance = typesystem.Covariant
	case "contravariant":
		variable.Variance = typesystem.Contravariant
	default:
		return variable, fmt.Errorf("variable %s: unknown variance %q", description.Name, description.Variance)
	}
	if description.Bound != "" {
		variable.Constraints = typesystem.Bound{Upper: typesystem.Primitive{Name: description.Bound}}
	}
	return variable, nil
}

func fail(format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		message = "\033[31m" + message + "\033[0m"
	}
	fmt.Fprintln(os.Stderr, message)
	os.Exit(1)
}
