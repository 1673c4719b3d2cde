package routes

import (
	"time"

	"gorm.io/gorm"

	moduleRepo "portalku_backend/internals/features/academics/modules/repository"
	moduleService "portalku_backend/internals/features/academics/modules/service"
	noteRepo "portalku_backend/internals/features/academics/notes/repository"
	noteService "portalku_backend/internals/features/academics/notes/service"
	videoRepo "portalku_backend/internals/features/academics/videos/repository"
	videoService "portalku_backend/internals/features/academics/videos/service"
	workModel "portalku_backend/internals/features/academics/workitems/model"
	workRepo "portalku_backend/internals/features/academics/workitems/repository"
	workService "portalku_backend/internals/features/academics/workitems/service"
	authRepo "portalku_backend/internals/features/users/auth/repository"
	authService "portalku_backend/internals/features/users/auth/service"
	profileRepo "portalku_backend/internals/features/users/profiles/repository"
	profileService "portalku_backend/internals/features/users/profiles/service"
	"portalku_backend/internals/features/users/session"
	"portalku_backend/internals/helpers/imagex"
	"portalku_backend/internals/helpers/storage"
)

// Deps adalah satu-satunya tempat service dirakit; main dan CLI admin memakainya bersama.
type Deps struct {
	DB       *gorm.DB
	Store    storage.ObjectStore
	Ledger   storage.Ledger
	Hub      *session.Hub
	Sessions *session.Store

	Auth     *authService.Service
	Profiles *profileService.Resolver
	RoleSync *profileService.RoleSync
	Modules  *moduleService.Service
	Work     []*workService.Service
	Notes    *noteService.Service
	Videos   *videoService.Service
}

const sessionTTL = 5 * time.Minute

func NewDeps(db *gorm.DB, store storage.ObjectStore) *Deps {
	d := &Deps{DB: db, Store: store, Ledger: storage.NewGormLedger(db)}
	d.Hub = session.NewHub()
	d.Sessions = session.NewStore(d.Hub, sessionTTL)

	profiles := profileRepo.NewGormRepository(db)
	d.Profiles = profileService.NewResolver(profiles, d.Hub)
	d.RoleSync = profileService.NewRoleSync(profiles, d.Hub, sessionTTL)
	d.Auth = authService.NewService(authRepo.NewGormRepository(db), d.Profiles, d.Hub, d.Sessions)

	tracker := storage.NewTracker(store, d.Ledger)
	d.Modules = moduleService.NewService(moduleRepo.NewGormRepository(db))

	items := workRepo.NewGormRepository(db)
	for _, spec := range workModel.AllKinds() {
		d.Work = append(d.Work, workService.NewService(spec.Kind, items, tracker, d.Modules))
	}
	d.Notes = noteService.NewService(noteRepo.NewGormRepository(db), tracker, d.Modules, imagex.NewWebPOptimizer(imagex.OptionsFromEnv()))
	d.Videos = videoService.NewService(videoRepo.NewGormRepository(db))
	return d
}

// Reaper mengenal semua tabel yang menyimpan object key.
func (d *Deps) Reaper(cfg storage.ReaperConfig) *storage.Reaper {
	refs := make([]storage.ReferenceChecker, 0, len(d.Work)+1)
	for _, w := range d.Work {
		refs = append(refs, w)
	}
	refs = append(refs, d.Notes)
	return storage.NewReaper(d.Store, d.Ledger, cfg, refs...)
}

func (d *Deps) Close() {
	if d.Sessions != nil {
		d.Sessions.Close()
	}
}
