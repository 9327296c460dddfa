//go:build !unix

package preflight

// CheckFileDescriptors reports the check as not applicable.
func (c *Checker) CheckFileDescriptors() CheckResult {
	return CheckResult{
		Name:    "file_descriptors",
		Status:  StatusPass,
		Message: "not applicable",
	}
}
