package vault

// ReadProfile returns the learner profile text, or "" when none exists.
func (v *Vault) ReadProfile() string {
	data, err := v.store.Read(profileFile)
	if err != nil {
		return ""
	}
	return string(data)
}

// UpdateProfile overwrites the learner profile with new content.
func (v *Vault) UpdateProfile(content string) error {
	return v.store.Write(profileFile, []byte(content))
}

// ReadFramework returns the optional framework text used as session
// context, or "" when absent.
func (v *Vault) ReadFramework() string {
	data, err := v.store.Read(frameworkFile)
	if err != nil {
		return ""
	}
	return string(data)
}
