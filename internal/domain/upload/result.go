// Package upload tracks the outcome of uploading one or more files.
package upload

// Failure is a file that could not be uploaded.
type Failure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Success is a file that was uploaded.
type Success struct {
	Path string `json:"path"`
}

// Result records per-file outcomes of an upload.
type Result struct {
	failures  []Failure
	successes []Success
}

// AddFailure registers path as failed with reason.
func (r *Result) AddFailure(path, reason string) {
	r.failures = append(r.failures, Failure{Path: path, Reason: reason})
}

// AddSuccess registers path as uploaded.
func (r *Result) AddSuccess(path string) {
	r.successes = append(r.successes, Success{Path: path})
}

// Failures returns the failed files in upload order.
func (r *Result) Failures() []Failure { return r.failures }

// Successes returns the uploaded files in upload order.
func (r *Result) Successes() []Success { return r.successes }

// Successful reports whether no file failed.
func (r *Result) Successful() bool { return len(r.failures) == 0 }
