package store

// SchemaVersion is the code-side database version. On open it is compared
// to the on-disk version; upgrades create missing stores and indices
// idempotently, downgrades fail with KindUpgrade.
const SchemaVersion = 1

// Store names for the Growth90 database.
const (
	UserProfiles     = "userProfiles"
	LearningPaths    = "learningPaths"
	LearningProgress = "learningProgress"
	Assessments      = "assessments"
	ContentCache     = "contentCache"
	Settings         = "settings"
	Analytics        = "analytics"
)

// IndexDef declares a secondary index over a store.
type IndexDef struct {
	Name    string
	KeyPath string // dot-separated path into the record
	Unique  bool
}

// StoreDef declares an object store: its primary key path and indices.
// AutoKey stores generate an integer primary key on insert.
type StoreDef struct {
	Name    string
	KeyPath string
	AutoKey bool
	Indices []IndexDef
}

// Schema returns the declared object stores of the Growth90 database.
func Schema() []StoreDef {
	return []StoreDef{
		{
			Name:    UserProfiles,
			KeyPath: "id",
			Indices: []IndexDef{
				{Name: "email", KeyPath: "email", Unique: true},
				{Name: "createdAt", KeyPath: "createdAt"},
			},
		},
		{
			Name:    LearningPaths,
			KeyPath: "id",
			Indices: []IndexDef{
				{Name: "userId", KeyPath: "userId"},
				{Name: "status", KeyPath: "status"},
				{Name: "createdAt", KeyPath: "createdAt"},
			},
		},
		{
			Name:    LearningProgress,
			KeyPath: "id",
			Indices: []IndexDef{
				{Name: "userId", KeyPath: "userId"},
				{Name: "pathId", KeyPath: "pathId"},
				{Name: "date", KeyPath: "completedAt"},
			},
		},
		{
			Name:    Assessments,
			KeyPath: "id",
			Indices: []IndexDef{
				{Name: "userId", KeyPath: "userId"},
				{Name: "pathId", KeyPath: "pathId"},
				{Name: "type", KeyPath: "type"},
			},
		},
		{
			Name:    ContentCache,
			KeyPath: "id",
			Indices: []IndexDef{
				{Name: "type", KeyPath: "type"},
				{Name: "expiresAt", KeyPath: "expiresAt"},
			},
		},
		{
			Name:    Settings,
			KeyPath: "key",
		},
		{
			Name:    Analytics,
			AutoKey: true,
			Indices: []IndexDef{
				{Name: "userId", KeyPath: "userId"},
				{Name: "event", KeyPath: "event"},
				{Name: "timestamp", KeyPath: "timestamp"},
			},
		},
	}
}

func schemaByName() map[string]StoreDef {
	m := make(map[string]StoreDef)
	for _, def := range Schema() {
		m[def.Name] = def
	}
	return m
}
