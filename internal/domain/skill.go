package domain

// SkillSource identifies which skill root a manifest was read from.
type SkillSource string

const (
	SkillSourceBundled   SkillSource = "bundled"
	SkillSourceShared    SkillSource = "shared"
	SkillSourceWorkspace SkillSource = "workspace"
)

// SkillManifest is the catalog entry for one skill directory.
type SkillManifest struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Group       string      `json:"group"`
	HasConfig   bool        `json:"hasConfig"`
	Source      SkillSource `json:"source"`
	Dir         string      `json:"-"`
}
