package ports

// PackageResolver maps package names to installed locations.
type PackageResolver interface {
	// PackageShare returns the share directory of pkg.
	PackageShare(pkg string) (string, error)
	// PackagePrefix returns the install prefix of pkg.
	PackagePrefix(pkg string) (string, error)
	// ResolveFragment finds a launch fragment by file name under the share directory of pkg.
	ResolveFragment(pkg, name string) (string, error)
	// ResolveSymlink follows symbolic links until a regular path is reached.
	ResolveSymlink(path string) (string, error)
	// PackageOf returns the package owning path, or "" when it cannot be determined.
	PackageOf(path string) string
}

// Fingerprinter is implemented by resolvers whose answers depend on external
// state, such as the install prefixes they search. Equal fingerprints mean
// equal answers, so analyses cached under one fingerprint are not reused under another.
type Fingerprinter interface {
	Fingerprint() string
}
