//go:build ignore

package main

import (
	"log"

	"entgo.io/ent/entc"
	"entgo.io/ent/entc/gen"
)

// Generates typed builders for the registry schema into gen/ent. The
// repository itself issues SQL through ent's dialect builder.
func main() {
	err := entc.Generate(
		"./db/ent/schema",
		&gen.Config{
			Target:  "gen/ent",
			Package: "github.com/joseph-ayodele/doc-analyzer/gen/ent",
			Schema:  "github.com/joseph-ayodele/doc-analyzer/db/ent/schema",
		},
	)
	if err != nil {
		log.Fatal(err)
	}
}
