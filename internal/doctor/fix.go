package doctor

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
)

// Fixer is implemented by checks that can remediate what they found.
type Fixer interface {
	// CanFix reports whether the last Run found fixable issues.
	CanFix() bool

	// Fix remediates the issues found by the last Run.
	Fix() []FixResult
}

// FixResult is the outcome of one attempted fix.
type FixResult struct {
	Path        string `json:"path"`
	Fixed       bool   `json:"fixed"`
	Description string `json:"description"`
	Error       error  `json:"-"`
}

const (
	secureFilePerm os.FileMode = 0o644
	secureDirPerm  os.FileMode = 0o755
)

// pathIssue is a problem with one catalog file or directory.
type pathIssue struct {
	Path    string
	Dir     bool
	Problem string
	Perm    os.FileMode
	Fixable bool
}

// PermissionFixer resets loose catalog permissions to 0644 for files and
// 0755 for directories.
type PermissionFixer struct {
	issues []pathIssue
}

var _ Fixer = (*PermissionFixer)(nil)

// CanFix implements Fixer.
func (f *PermissionFixer) CanFix() bool {
	return f.CountFixable() > 0
}

// CountFixable returns the number of fixable issues.
func (f *PermissionFixer) CountFixable() int {
	n := 0
	for _, issue := range f.issues {
		if issue.Fixable {
			n++
		}
	}
	return n
}

// Fix implements Fixer.
func (f *PermissionFixer) Fix() []FixResult {
	results := make([]FixResult, 0, f.CountFixable())
	for _, issue := range f.issues {
		if issue.Fixable {
			results = append(results, fixPermission(issue))
		}
	}
	return results
}

func fixPermission(issue pathIssue) FixResult {
	target := secureFilePerm
	if issue.Dir {
		target = secureDirPerm
	}
	res := FixResult{Path: issue.Path}
	if err := os.Chmod(issue.Path, target); err != nil {
		res.Description = fmt.Sprintf("chmod %04o failed", target)
		res.Error = errors.Wrapf(err, "chmod %04o %s", target, issue.Path)
		return res
	}
	res.Fixed = true
	res.Description = fmt.Sprintf("chmod %04o", target)
	return res
}
