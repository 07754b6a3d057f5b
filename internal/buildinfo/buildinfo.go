package buildinfo

// Injectées à la compilation via -ldflags :
//
//	-X github.com/Guilhem-Bonnet/streamplan/internal/buildinfo.Version=v0.3.0
//	-X github.com/Guilhem-Bonnet/streamplan/internal/buildinfo.Commit=abcdef
//	-X github.com/Guilhem-Bonnet/streamplan/internal/buildinfo.Date=2026-10-15
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
	Date    string `json:"date,omitempty"`
	// Catalog est l'empreinte du catalogue chargé, renseignée par le serveur.
	Catalog string `json:"catalog,omitempty"`
}

func Current() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// WithCatalog renvoie les infos de build complétées par l'empreinte du catalogue.
func WithCatalog(fingerprint string) Info {
	info := Current()
	info.Catalog = fingerprint
	return info
}
