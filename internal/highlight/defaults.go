package highlight

// RegisterDefaults registers every built-in language: pylegend (which also
// serves Legend cells) and Python.
func RegisterDefaults(reg *Registry, provider ThemeProvider) error {
	if err := RegisterLanguage(reg, provider); err != nil {
		return err
	}
	return RegisterPython(reg, provider)
}

// RegisterIdentities points configured cell identities at the built-in
// languages: legend at pylegend and python at Python. Empty identities
// are skipped.
func RegisterIdentities(reg *Registry, legend, python string) error {
	if legend != "" {
		if err := reg.AddAlias(legend, PylegendName); err != nil {
			return err
		}
	}
	if python != "" {
		if err := reg.AddAlias(python, PythonName); err != nil {
			return err
		}
	}
	return nil
}
