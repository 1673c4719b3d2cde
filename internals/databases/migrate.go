package database

import (
	"fmt"
	"log"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	moduleModel "portalku_backend/internals/features/academics/modules/model"
	noteModel "portalku_backend/internals/features/academics/notes/model"
	videoModel "portalku_backend/internals/features/academics/videos/model"
	workModel "portalku_backend/internals/features/academics/workitems/model"
	authModel "portalku_backend/internals/features/users/auth/model"
	profileModel "portalku_backend/internals/features/users/profiles/model"
	"portalku_backend/internals/helpers/storage"
)

// Migrate membuat/menyesuaikan semua tabel dan index. Aman dijalankan berulang.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&authModel.UserModel{},
		&authModel.TokenBlacklist{},
		&profileModel.ProfileModel{},
		&moduleModel.ModuleModel{},
		&noteModel.NoteModel{},
		&videoModel.VideoModel{},
		&storage.PendingUpload{},
	); err != nil {
		return errors.Wrap(err, "automigrate base tables")
	}

	for _, spec := range workModel.AllKinds() {
		if err := db.Table(spec.ItemsTable).AutoMigrate(&workModel.WorkItemModel{}); err != nil {
			return errors.Wrapf(err, "automigrate %s", spec.ItemsTable)
		}
		if err := db.Table(spec.SubmissionsTable).AutoMigrate(&workModel.SubmissionModel{}); err != nil {
			return errors.Wrapf(err, "automigrate %s", spec.SubmissionsTable)
		}
		for _, stmt := range kindIndexes(spec) {
			if err := db.Exec(stmt).Error; err != nil {
				return errors.Wrapf(err, "index on %s", spec.ItemsTable)
			}
		}
		log.Printf("[MIGRATE] %s + %s ok", spec.ItemsTable, spec.SubmissionsTable)
	}
	return nil
}

func kindIndexes(spec workModel.KindSpec) []string {
	it, sub := spec.ItemsTable, spec.SubmissionsTable
	return []string{
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_module_id ON %s (module_id)`, it, it),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_created_at ON %s (created_at DESC)`, it, it),
		// batas attempt atomik: insert paralel dengan attempt sama gagal 23505
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS uq_%s_attempt ON %s (work_item_id, student_id, attempt)`, sub, sub),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_file_path ON %s (file_path)`, sub, sub),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_submitted_at ON %s (work_item_id, submitted_at DESC)`, sub, sub),
		fmt.Sprintf(`DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_%s_attempt') THEN
    ALTER TABLE %s ADD CONSTRAINT chk_%s_attempt CHECK (attempt >= 1);
  END IF;
END $$`, sub, sub, sub),
		fmt.Sprintf(`DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_%s_item') THEN
    ALTER TABLE %s ADD CONSTRAINT fk_%s_item FOREIGN KEY (work_item_id) REFERENCES %s (id);
  END IF;
END $$`, sub, sub, sub, it),
	}
}
