// Package xmlcodec reads and writes the three yum/dnf repodata documents —
// primary.xml, filelists.xml, repomd.xml — plus their gzip-compressed
// forms. Struct shapes and namespaces are grounded on
// cff32420_e2llm-rpmrepo-update's pkg/metadata/model.go, adapted to this
// repository's model.Package instead of a second domain-specific struct.
package xmlcodec

import "encoding/xml"

const (
	commonNamespace    = "http://linux.duke.edu/metadata/common"
	rpmNamespace       = "http://linux.duke.edu/metadata/rpm"
	filelistsNamespace = "http://linux.duke.edu/metadata/filelists"
	repoNamespace      = "http://linux.duke.edu/metadata/repo"
)

type primaryDoc struct {
	XMLName  xml.Name     `xml:"metadata"`
	Xmlns    string       `xml:"xmlns,attr"`
	XmlnsRpm string       `xml:"xmlns:rpm,attr"`
	Count    int          `xml:"packages,attr"`
	Packages []primaryPkg `xml:"package"`
}

type primaryPkg struct {
	Type        string      `xml:"type,attr"`
	Name        string      `xml:"name"`
	Arch        string      `xml:"arch"`
	Version     xmlVersion  `xml:"version"`
	Checksum    xmlChecksum `xml:"checksum"`
	Summary     string      `xml:"summary"`
	Description string      `xml:"description"`
	Packager    string      `xml:"packager,omitempty"`
	URL         string      `xml:"url,omitempty"`
	Time        xmlTime     `xml:"time"`
	Size        xmlSize     `xml:"size"`
	Location    xmlLocation `xml:"location"`
	Format      xmlFormat   `xml:"format"`
}

type xmlVersion struct {
	Epoch string `xml:"epoch,attr"`
	Ver   string `xml:"ver,attr"`
	Rel   string `xml:"rel,attr"`
}

type xmlChecksum struct {
	Type  string `xml:"type,attr"`
	PkgID string `xml:"pkgid,attr,omitempty"`
	Value string `xml:",chardata"`
}

type xmlTime struct {
	File  int64 `xml:"file,attr"`
	Build int64 `xml:"build,attr"`
}

type xmlSize struct {
	Package   int64 `xml:"package,attr"`
	Installed int64 `xml:"installed,attr"`
	Archive   int64 `xml:"archive,attr"`
}

type xmlLocation struct {
	Href string `xml:"href,attr"`
}

type xmlFormat struct {
	License     string        `xml:"rpm:license,omitempty"`
	Vendor      string        `xml:"rpm:vendor,omitempty"`
	Group       string        `xml:"rpm:group,omitempty"`
	BuildHost   string        `xml:"rpm:buildhost,omitempty"`
	SourceRPM   string        `xml:"rpm:sourcerpm,omitempty"`
	HeaderRange *xmlHdrRange  `xml:"rpm:header-range,omitempty"`
	Provides    []xmlDepEntry `xml:"rpm:provides>rpm:entry,omitempty"`
	Requires    []xmlDepEntry `xml:"rpm:requires>rpm:entry,omitempty"`
	Conflicts   []xmlDepEntry `xml:"rpm:conflicts>rpm:entry,omitempty"`
	Obsoletes   []xmlDepEntry `xml:"rpm:obsoletes>rpm:entry,omitempty"`
	Files       []xmlFileRef  `xml:"file,omitempty"`
}

type xmlHdrRange struct {
	Start int64 `xml:"start,attr"`
	End   int64 `xml:"end,attr"`
}

type xmlDepEntry struct {
	Name    string `xml:"name,attr"`
	Flags   string `xml:"flags,attr,omitempty"`
	Epoch   string `xml:"epoch,attr,omitempty"`
	Version string `xml:"ver,attr,omitempty"`
	Release string `xml:"rel,attr,omitempty"`
	Pre     string `xml:"pre,attr,omitempty"`
}

type xmlFileRef struct {
	Type string `xml:"type,attr,omitempty"`
	Path string `xml:",chardata"`
}

type filelistsDoc struct {
	XMLName  xml.Name       `xml:"filelists"`
	Xmlns    string         `xml:"xmlns,attr"`
	Count    int            `xml:"packages,attr"`
	Packages []filelistsPkg `xml:"package"`
}

type filelistsPkg struct {
	PkgID   string       `xml:"pkgid,attr"`
	Name    string       `xml:"name,attr"`
	Arch    string       `xml:"arch,attr"`
	Version xmlVersion   `xml:"version"`
	Files   []xmlFileRef `xml:"file"`
}

type repomdDoc struct {
	XMLName  xml.Name       `xml:"repomd"`
	Xmlns    string         `xml:"xmlns,attr"`
	Revision int64          `xml:"revision"`
	Data     []repomdDocData `xml:"data"`
}

type repomdDocData struct {
	Type         string           `xml:"type,attr"`
	Checksum     repomdChecksum   `xml:"checksum"`
	OpenChecksum *repomdChecksum  `xml:"open-checksum,omitempty"`
	Location     xmlLocation      `xml:"location"`
	Timestamp    int64            `xml:"timestamp"`
	Size         int64            `xml:"size"`
	OpenSize     int64            `xml:"open-size,omitempty"`
}

type repomdChecksum struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}
