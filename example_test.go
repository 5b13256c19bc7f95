package pgts_test

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/lucasefe/pgts"
	"github.com/lucasefe/pgts/schema"
)

func ExampleGenerate() {
	catalog := schema.Catalog{
		"public": {
			Name: "public",
			Tables: []schema.Object{{
				Schema: "public", Name: "actor", Kind: schema.KindTable,
				Columns: []schema.Column{
					{Name: "actor_id", Type: "pg_catalog.int4", PrimaryKey: true, Ordinal: 1},
					{Name: "last_name", Type: "pg_catalog.text", Ordinal: 2},
				},
			}},
		},
	}

	res, err := pgts.Generate(context.Background(), pgts.Config{
		Logger: log.New(io.Discard, "", 0),
	}, catalog)
	if err != nil {
		panic(err)
	}

	for _, f := range res.Files {
		for _, line := range f.Lines {
			if strings.HasPrefix(line, "export") {
				fmt.Println(line)
			}
		}
	}
	// Output:
	// export type ActorId = number & { __brand: 'ActorId' };
	// export default interface Actor {
	// export interface ActorInitializer {
	// export interface ActorMutator {
}
