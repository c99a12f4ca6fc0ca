// Package model fetches and verifies the speaker encoder assets the
// evaluation engine depends on.
package model

import "fmt"

// DefaultRepo is the Hugging Face repository holding the speaker encoder.
const DefaultRepo = "speechbrain/spkrec-ecapa-voxceleb"

type Manifest struct {
	Repo  string      `json:"repo"`
	Files []ModelFile `json:"files"`
}

type ModelFile struct {
	Filename string `json:"filename"`
	Revision string `json:"revision"`
	SHA256   string `json:"sha256"`
}

// PinnedManifest returns the file list for a known encoder repository.
// Checksums left empty are resolved from HF metadata at download time and
// persisted into the local lock manifest.
func PinnedManifest(repo string) (Manifest, error) {
	switch repo {
	case DefaultRepo:
		return Manifest{
			Repo: repo,
			Files: []ModelFile{
				{
					Filename: "speaker_encoder.onnx",
					Revision: "main",
					SHA256:   "",
				},
			},
		}, nil
	default:
		return Manifest{}, fmt.Errorf("no pinned manifest for repo %q", repo)
	}
}
