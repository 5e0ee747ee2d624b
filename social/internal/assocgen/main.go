// assocgen generates the typed wrappers of the social model.
// Run: go generate ./social
package main

import (
	"log"

	"github.com/syssam/assoc/compiler/gen"
	"github.com/syssam/assoc/social/schema"
)

func main() {
	reg, err := schema.New()
	if err != nil {
		log.Fatalf("loading schema: %v", err)
	}
	err = gen.Generate(reg,
		gen.WithSchema("github.com/syssam/assoc/social/schema"),
		gen.WithTarget("social_gen.go"),
	)
	if err != nil {
		log.Fatalf("running assocgen: %v", err)
	}
}
