// Package citrination is a Go client for the Citrination materials
// informatics platform.
//
// Searches page through the platform transparently: a single call returns
// every hit in the requested window, up to the client's maximum query size.
//
//	client, _ := citrination.New(citrination.WithAPIKey(os.Getenv("CITRINATION_API_KEY")))
//
//	q := client.Search().GenerateSimpleChemicalQuery(citrination.SimpleChemicalQuery{
//	    ChemicalFormula: []string{"GaN"},
//	    PropertyName:    []string{"Band gap"},
//	    Size:            citrination.Int(100),
//	})
//	res, _ := client.Search().PifSearch(ctx, q)
//
// Datasets and uploads:
//
//	ds, _ := client.Data().CreateDataset(ctx, "Tutorial dataset", "", false)
//	up, _ := client.Data().Upload(ctx, ds.ID(), "./pifs", "pifs/")
//	if !up.Successful() { ... }
package citrination
