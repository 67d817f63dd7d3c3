// Package routes is the platform's route table, shared by the client
// transport and the sandbox server. Templates use {name} placeholders.
package routes

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/oapi-codegen/runtime"
)

// Route templates relative to the API root.
const (
	PifSearch      = "search/pif_search"
	DatasetSearch  = "search/dataset"
	PifMultiSearch = "search/pif/multi_pif_search"
	CreateDataset  = "data_sets/create_dataset"
	UploadURL      = "data_sets/{dataset_id}/upload"
	ConfirmUpload  = "data_sets/{dataset_id}/update/{request_id}"
	ListFiles      = "datasets/{dataset_id}/list_filepaths"
)

// Path parameter names.
const (
	ParamDatasetID = "dataset_id"
	ParamRequestID = "request_id"
)

// Param is a path parameter value.
type Param struct {
	Name  string
	Value any
}

// Expand substitutes params into template, escaping each value as a
// simple-style path parameter.
func Expand(template string, params ...Param) (string, error) {
	out := template
	for _, p := range params {
		placeholder := "{" + p.Name + "}"
		if !strings.Contains(out, placeholder) {
			return "", errors.Newf("route %q has no parameter %q", template, p.Name)
		}
		v, err := runtime.StyleParamWithLocation("simple", false, p.Name, runtime.ParamLocationPath, p.Value)
		if err != nil {
			return "", errors.Wrapf(err, "route %q parameter %q", template, p.Name)
		}
		out = strings.ReplaceAll(out, placeholder, v)
	}
	if i := strings.IndexByte(out, '{'); i >= 0 {
		return "", errors.Newf("route %q has unfilled parameters", template)
	}
	return out, nil
}
