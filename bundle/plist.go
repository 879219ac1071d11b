package bundle

import (
	"bytes"

	"howett.net/plist"
)

// infoPlist is the Contents/Info.plist dictionary. Field names map to the
// Apple keys through plist tags; optional keys are omitted when empty.
type infoPlist struct {
	DevelopmentRegion      string `plist:"CFBundleDevelopmentRegion"`
	DisplayName            string `plist:"CFBundleDisplayName"`
	Executable             string `plist:"CFBundleExecutable"`
	IconFile               string `plist:"CFBundleIconFile,omitempty"`
	Identifier             string `plist:"CFBundleIdentifier"`
	InfoDictionaryVersion  string `plist:"CFBundleInfoDictionaryVersion"`
	Name                   string `plist:"CFBundleName"`
	PackageType            string `plist:"CFBundlePackageType"`
	ShortVersion           string `plist:"CFBundleShortVersionString"`
	Version                string `plist:"CFBundleVersion"`
	ResourcesFileMapped    bool   `plist:"CSResourcesFileMapped"`
	ApplicationCategory    string `plist:"LSApplicationCategoryType,omitempty"`
	MinimumSystemVersion   string `plist:"LSMinimumSystemVersion,omitempty"`
	RequiresCarbon         bool   `plist:"LSRequiresCarbon"`
	HighResolutionCapable  bool   `plist:"NSHighResolutionCapable"`
	HumanReadableCopyright string `plist:"NSHumanReadableCopyright,omitempty"`
}

// newInfoPlist fills the dictionary for desc.
//
// Arguments:
//   - desc: The bundle identity.
//   - executable: The file name under Contents/MacOS.
//   - iconFile: The icon's base name under Contents/Resources, or "" for none.
//
// Returns:
//   - infoPlist: The dictionary to encode.
func newInfoPlist(desc Descriptor, executable, iconFile string) infoPlist {
	return infoPlist{
		DevelopmentRegion:      "English",
		DisplayName:            desc.Name,
		Executable:             executable,
		IconFile:               iconFile,
		Identifier:             desc.Identifier,
		InfoDictionaryVersion:  "6.0",
		Name:                   desc.Name,
		PackageType:            "APPL",
		ShortVersion:           desc.Version,
		Version:                desc.Version,
		ResourcesFileMapped:    true,
		ApplicationCategory:    desc.Category,
		MinimumSystemVersion:   desc.MinimumSystemVersion,
		RequiresCarbon:         true,
		HighResolutionCapable:  true,
		HumanReadableCopyright: desc.Copyright,
	}
}

// encode renders the dictionary as a tab-indented XML property list.
func (p infoPlist) encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := plist.NewEncoderForFormat(&buf, plist.XMLFormat)
	enc.Indent("\t")
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
