// Package gitignore lists the paths that version-control ignore rules exclude
// beneath a directory.
//
// Pattern semantics come from go-git's gitignore implementation. For a
// directory D the rules are, from lowest to highest precedence:
//
//   - the system and global excludes files (core.excludesfile), when enabled
//   - D/.git/info/exclude, when D is a repository root
//   - D/.gitignore
//
// Usage:
//
//	p := gitignore.New(gitignore.WithGlobalExcludes(true))
//	for _, path := range p.List(ctx, "/path/to/project") {
//	    // path is absolute, canonical and not inside another listed path
//	}
package gitignore
