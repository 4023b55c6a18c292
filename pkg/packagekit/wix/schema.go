package wix

import "encoding/xml"

// YesNoType is the wix boolean.
// http://wixtoolset.org/documentation/manual/v3/xsd/wix/simple_type_yesnotype.html
type YesNoType string

const (
	Yes YesNoType = "yes"
	No  YesNoType = "no"
)

// YesNo converts a bool to a YesNoType
func YesNo(b bool) YesNoType {
	if b {
		return Yes
	}
	return No
}

// Component implements
// http://wixtoolset.org/documentation/manual/v3/xsd/wix/component.html
// We only ever place a single File in a component, which keeps the
// component the unit of install, uninstall and upgrade for that file.
type Component struct {
	XMLName xml.Name  `xml:"Component"`
	Id      string    `xml:",attr"`
	Guid    string    `xml:",attr"`
	Win64   YesNoType `xml:",attr,omitempty"`
	File    *File     `xml:",omitempty"`
}

// File implements
// http://wixtoolset.org/documentation/manual/v3/xsd/wix/file.html
type File struct {
	XMLName  xml.Name  `xml:"File"`
	Id       string    `xml:",attr"`
	Name     string    `xml:",attr"`
	Source   string    `xml:",attr"`
	KeyPath  YesNoType `xml:",attr,omitempty"`
	Shortcut *Shortcut `xml:",omitempty"`
}

// Shortcut implements
// http://wixtoolset.org/documentation/manual/v3/xsd/wix/shortcut.html
type Shortcut struct {
	XMLName          xml.Name  `xml:"Shortcut"`
	Id               string    `xml:",attr"`
	Name             string    `xml:",attr"`
	WorkingDirectory string    `xml:",attr,omitempty"`
	Icon             string    `xml:",attr,omitempty"`
	IconIndex        string    `xml:",attr,omitempty"`
	Directory        string    `xml:",attr,omitempty"`
	Advertise        YesNoType `xml:",attr,omitempty"`
}

// ComponentRef implements
// http://wixtoolset.org/documentation/manual/v3/xsd/wix/componentref.html
type ComponentRef struct {
	XMLName xml.Name `xml:"ComponentRef"`
	Id      string   `xml:",attr"`
}

// ExtraComponent is a hand written component that is added to the
// root directory after the harvested files. Id and FileId are
// prefixed with the variant prefix. Source is slash separated, and is
// written with the source prefix and separator like any other file.
type ExtraComponent struct {
	Id       string
	FileId   string
	Name     string
	Source   string
	Shortcut *Shortcut
}

var (
	includeName   = xml.Name{Local: "Include"}
	directoryName = xml.Name{Local: "Directory"}
	componentName = xml.Name{Local: "Component"}
	fileName      = xml.Name{Local: "File"}
)

func directoryStart(id, name string) xml.StartElement {
	return xml.StartElement{
		Name: directoryName,
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "Id"}, Value: id},
			{Name: xml.Name{Local: "Name"}, Value: name},
		},
	}
}
