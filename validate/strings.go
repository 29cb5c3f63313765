package validate

// Name is a string checked against the XML 1.0 Name production. It may
// contain colons and is used for element and attribute names before
// prefix expansion.
type Name string

// NCName is a Name without colons, used for prefixes and local names.
type NCName string

// CData is a string of valid XML Chars, used for attribute values and
// text content. References are already expanded.
type CData string

// NewName checks s and returns it as a Name.
func NewName(s string) (Name, error) {
	if err := ValidateName(s); err != nil {
		return "", err
	}
	return Name(s), nil
}

// NewNCName checks s and returns it as an NCName.
func NewNCName(s string) (NCName, error) {
	if err := ValidateNCName(s); err != nil {
		return "", err
	}
	return NCName(s), nil
}

// NewCData checks s and returns it as CData.
func NewCData(s string) (CData, error) {
	if err := ValidateCData(s); err != nil {
		return "", err
	}
	return CData(s), nil
}

// MustName is like NewName but panics on invalid input. Use it for
// package-level constants, the way regexp.MustCompile is used: the panic
// fires during init, turning an invalid literal into a build-and-test
// time failure.
func MustName(s string) Name {
	n, err := NewName(s)
	if err != nil {
		panic(`validate.MustName(` + s + `): ` + err.Error())
	}
	return n
}

// MustNCName is like NewNCName but panics on invalid input.
func MustNCName(s string) NCName {
	n, err := NewNCName(s)
	if err != nil {
		panic(`validate.MustNCName(` + s + `): ` + err.Error())
	}
	return n
}

// MustCData is like NewCData but panics on invalid input.
func MustCData(s string) CData {
	c, err := NewCData(s)
	if err != nil {
		panic(`validate.MustCData(` + s + `): ` + err.Error())
	}
	return c
}

// Name returns the NCName widened to a Name. Every NCName is a Name.
func (n NCName) Name() Name {
	return Name(n)
}

// CData returns the Name widened to character data. Every Name is valid
// character data.
func (n Name) CData() CData {
	return CData(n)
}
