// Package lexai is an embeddable client for the lexai legal question answering
// pipeline. It answers a question against the reference corpus of a configured
// jurisdiction and grounds the model answer in the closest corpus records.
//
//	client, _ := lexai.New(ctx,
//	    lexai.WithOpenAI(os.Getenv("OPENAI_API_KEY"), ""),
//	    lexai.WithJurisdiction("Boulder", "data/boulder_embeddings.json.gz",
//	        "You are an expert in the municipal code of Boulder, Colorado."),
//	)
//	defer client.Close()
//
//	out := client.Ask(ctx, "Can I keep chickens in my backyard?", "Boulder")
//	if !out.OK() {
//	    log.Println(out.Failure.Message)
//	}
//	for _, m := range out.Matches {
//	    fmt.Println(m.Rank, m.Record.Title, m.Record.URL)
//	}
//
// Corpus locators are file paths (".gz" for gzip), redis://key with
// WithRedis, or sql://table with WithSQL.
package lexai
