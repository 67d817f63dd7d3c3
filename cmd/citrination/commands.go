package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	citrination "github.com/kailas-cloud/citrination/pkg/sdk"
)

func commands() []*cli.Command {
	windowFlags := []cli.Flag{
		&cli.IntFlag{Name: "from", Usage: "Index of the first hit"},
		&cli.IntFlag{Name: "size", Usage: "Number of hits"},
	}

	return []*cli.Command{
		{
			Name:      "pif-search",
			Usage:     "Run a PIF system query read from FILE or stdin",
			ArgsUsage: "[FILE]",
			Flags:     windowFlags,
			Action:    pifSearch,
		},
		{
			Name:      "dataset-search",
			Usage:     "Run a dataset query read from FILE or stdin",
			ArgsUsage: "[FILE]",
			Flags:     windowFlags,
			Action:    datasetSearch,
		},
		{
			Name:      "multi-search",
			Usage:     "Run a batch of PIF queries read from FILE or stdin",
			ArgsUsage: "[FILE]",
			Action:    multiSearch,
		},
		{
			Name:  "simple-search",
			Usage: "Search PIF systems by formula, name, property and dataset",
			Flags: append([]cli.Flag{
				&cli.StringSliceFlag{Name: "name", Usage: "System name; repeatable"},
				&cli.StringSliceFlag{Name: "formula", Usage: "Chemical formula; repeatable"},
				&cli.StringSliceFlag{Name: "property", Usage: "Property name; repeatable"},
				&cli.StringSliceFlag{Name: "value", Usage: "Property value; repeatable"},
				&cli.StringFlag{Name: "min", Usage: "Minimum property value"},
				&cli.StringFlag{Name: "max", Usage: "Maximum property value"},
				&cli.StringSliceFlag{Name: "units", Usage: "Property units; repeatable"},
				&cli.StringSliceFlag{Name: "doi", Usage: "Reference DOI; repeatable"},
				&cli.IntSliceFlag{Name: "include", Usage: "Only these dataset IDs; repeatable"},
				&cli.IntSliceFlag{Name: "exclude", Usage: "Not these dataset IDs; repeatable"},
			}, windowFlags...),
			Action: simpleSearch,
		},
		{
			Name:  "create-dataset",
			Usage: "Create a dataset",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "name", Required: true},
				&cli.StringFlag{Name: "description"},
				&cli.BoolFlag{Name: "public"},
			},
			Action: createDataset,
		},
		{
			Name:      "upload",
			Usage:     "Upload a file or directory to a dataset",
			ArgsUsage: "SOURCE [DEST]",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "dataset", Aliases: []string{"d"}, Required: true},
			},
			Action: upload,
		},
		{
			Name:      "ls",
			Usage:     "List dataset files",
			ArgsUsage: "[PATH]",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "dataset", Aliases: []string{"d"}, Required: true},
				&cli.BoolFlag{Name: "recursive", Aliases: []string{"r"}},
				&cli.BoolFlag{Name: "count", Usage: "Print the number of files in the dataset"},
			},
			Action: listFiles,
		},
	}
}

// applyWindow overrides the query window with --from and --size.
func applyWindow(c *cli.Context, r *citrination.ReturningQuery) {
	if c.IsSet("from") {
		r.FromIndex = citrination.Int(c.Int("from"))
	}
	if c.IsSet("size") {
		r.Size = citrination.Int(c.Int("size"))
	}
}

func pifSearch(c *cli.Context) error {
	var q citrination.PifSystemReturningQuery
	if err := readInput(c, &q); err != nil {
		return err
	}
	applyWindow(c, &q.Returning)

	s, err := newSession(c)
	if err != nil {
		return err
	}
	res, err := s.client.Search().PifSearch(s.ctx, q)
	if err != nil {
		return err
	}
	return s.print(res)
}

func datasetSearch(c *cli.Context) error {
	var q citrination.DatasetReturningQuery
	if err := readInput(c, &q); err != nil {
		return err
	}
	applyWindow(c, &q.Returning)

	s, err := newSession(c)
	if err != nil {
		return err
	}
	res, err := s.client.Search().DatasetSearch(s.ctx, q)
	if err != nil {
		return err
	}
	return s.print(res)
}

func multiSearch(c *cli.Context) error {
	var mq citrination.MultiQuery
	if err := readInput(c, &mq); err != nil {
		return err
	}

	s, err := newSession(c)
	if err != nil {
		return err
	}
	res, err := s.client.Search().PifMultiSearch(s.ctx, mq)
	if err != nil {
		return err
	}
	return s.print(res)
}

// simpleQuery builds the simple chemical query described by the flags.
func simpleQuery(c *cli.Context) citrination.SimpleChemicalQuery {
	sq := citrination.SimpleChemicalQuery{
		Name:            c.StringSlice("name"),
		ChemicalFormula: c.StringSlice("formula"),
		PropertyName:    c.StringSlice("property"),
		PropertyMin:     parseValue(c.String("min")),
		PropertyMax:     parseValue(c.String("max")),
		PropertyUnits:   c.StringSlice("units"),
		ReferenceDOI:    c.StringSlice("doi"),
		IncludeDatasets: c.IntSlice("include"),
		ExcludeDatasets: c.IntSlice("exclude"),
	}
	for _, v := range c.StringSlice("value") {
		sq.PropertyValue = append(sq.PropertyValue, parseValue(v))
	}
	if c.IsSet("from") {
		sq.FromIndex = citrination.Int(c.Int("from"))
	}
	if c.IsSet("size") {
		sq.Size = citrination.Int(c.Int("size"))
	}
	return sq
}

func simpleSearch(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	q := s.client.Search().GenerateSimpleChemicalQuery(simpleQuery(c))
	res, err := s.client.Search().PifSearch(s.ctx, q)
	if err != nil {
		return err
	}
	return s.print(res)
}

func createDataset(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	d, err := s.client.Data().CreateDataset(s.ctx, c.String("name"), c.String("description"), c.Bool("public"))
	if err != nil {
		return err
	}
	return s.print(datasetView(d))
}

func upload(c *cli.Context) error {
	if c.NArg() < 1 {
		return errors.New("upload: SOURCE is required")
	}
	s, err := newSession(c)
	if err != nil {
		return err
	}
	res, err := s.client.Data().Upload(s.ctx, c.Int("dataset"), c.Args().Get(0), c.Args().Get(1))
	if err != nil {
		return err
	}
	if err := s.print(uploadView(res)); err != nil {
		return err
	}
	if !res.Successful() {
		return cli.Exit(fmt.Sprintf("%d files failed to upload", len(res.Failures())), 2)
	}
	return nil
}

func listFiles(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	if c.Bool("count") {
		n, err := s.client.Data().MatchedFileCount(s.ctx, c.Int("dataset"))
		if err != nil {
			return err
		}
		return s.print(map[string]int{"count": n})
	}
	files, err := s.client.Data().ListFiles(s.ctx, c.Int("dataset"), c.Args().First(), c.Bool("recursive"))
	if err != nil {
		return err
	}
	return s.print(files)
}

func datasetView(d *citrination.Dataset) map[string]any {
	v := map[string]any{"id": d.ID()}
	if name, ok := d.Name(); ok {
		v["name"] = name
	}
	if desc, ok := d.Description(); ok {
		v["description"] = desc
	}
	if created, ok := d.CreatedAt(); ok {
		v["created_at"] = created
	}
	return v
}

func uploadView(r *citrination.UploadResult) map[string]any {
	failures := r.Failures()
	if failures == nil {
		failures = []citrination.UploadFailure{}
	}
	successes := r.Successes()
	if successes == nil {
		successes = []citrination.UploadSuccess{}
	}
	return map[string]any{
		"successful": r.Successful(),
		"failures":   failures,
		"successes":  successes,
	}
}
