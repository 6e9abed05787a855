package errors_test

import (
	"fmt"

	"github.com/agentstation/candimap/pkg/errors"
)

// Example demonstrates basic error creation and checking.
func Example() {
	err := errors.WrapIO("read", "pass-1.json", fmt.Errorf("no such file or directory"))

	var ioErr *errors.IOError
	if errors.As(err, &ioErr) {
		fmt.Println("cannot", ioErr.Operation, ioErr.Path)
	}

	// Output: cannot read pass-1.json
}

// Example_assemblyError demonstrates detecting an inconsistent dataset.
func Example_assemblyError() {
	var err error = &errors.AssemblyError{Input: 5, Survivors: 3, Discarded: 1}

	if errors.IsInconsistent(err) {
		fmt.Println("refusing to publish")
	}

	// Output: refusing to publish
}
