package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"comptabilite/internal/apperror"
	"comptabilite/internal/database"
	"comptabilite/internal/model"
	"comptabilite/internal/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newPersonnelService(db *gorm.DB) PersonnelService {
	return NewPersonnelService(
		repository.NewPersonnelRepository(db),
		repository.NewPersonnelSectionRepository(db),
		repository.NewAuditRepository(db),
		repository.NewTransactionManager(db),
		nil,
	)
}

func createSections(t *testing.T, db *gorm.DB, labels ...string) []uint {
	t.Helper()
	ids := make([]uint, 0, len(labels))
	for _, label := range labels {
		s := model.Section{Label: label, Unit: "U1", Type: "operational"}
		if err := db.Create(&s).Error; err != nil {
			t.Fatalf("seed section: %v", err)
		}
		ids = append(ids, s.ID)
	}
	return ids
}

func TestSectionIDList_Unmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []uint
		wantErr bool
	}{
		{name: "numbers", input: `[1, 2]`, want: []uint{1, 2}},
		{name: "integer strings", input: `["3", " 4 "]`, want: []uint{3, 4}},
		{name: "mixed", input: `[1, "2"]`, want: []uint{1, 2}},
		{name: "empty", input: `[]`, want: []uint{}},
		{name: "float", input: `[1.5]`, wantErr: true},
		{name: "word", input: `["abc"]`, wantErr: true},
		{name: "negative", input: `[-1]`, wantErr: true},
		{name: "not an array", input: `"1,2"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got SectionIDList
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				if !errors.Is(err, apperror.ErrBadSectionRef) {
					t.Errorf("error = %v, want ErrBadSectionRef kind", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestPersonnelCreateWithSections(t *testing.T) {
	db := setupTestDB(t)
	svc := newPersonnelService(db)
	ctx := context.Background()

	sections := createSections(t, db, "Comptabilité", "Logistique")

	created, err := svc.Create(ctx, 0, PersonnelRequest{
		Matricule:     "MAT-100",
		Nom:           "Diallo",
		Qualification: "Technicien",
		Affectation:   "Atelier",
		Sections:      SectionIDList(sections),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(created.Sections) != 2 {
		t.Errorf("sections = %v, want 2 entries", created.Sections)
	}
	if created.SectionLabels == "" {
		t.Error("section labels not populated")
	}
}

func TestPersonnelCreate_InvalidSectionRollsBack(t *testing.T) {
	db := setupTestDB(t)
	svc := newPersonnelService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, 0, PersonnelRequest{
		Matricule:     "MAT-101",
		Nom:           "Diallo",
		Qualification: "Technicien",
		Affectation:   "Atelier",
		Sections:      SectionIDList{99999},
	})
	if !errors.Is(err, apperror.ErrBadSectionRef) {
		t.Fatalf("error = %v, want ErrBadSectionRef kind", err)
	}

	// No personnel row may survive the rolled-back create.
	var count int64
	if err := db.Model(&model.Personnel{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("personnel rows = %d after failed create, want 0", count)
	}
}

func TestPersonnelCreate_DuplicateMatricule(t *testing.T) {
	db := setupTestDB(t)
	svc := newPersonnelService(db)
	ctx := context.Background()

	req := PersonnelRequest{Matricule: "MAT-102", Nom: "Diallo", Qualification: "Technicien", Affectation: "Atelier"}
	if _, err := svc.Create(ctx, 0, req); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.Create(ctx, 0, req); !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("error = %v, want ErrConflict", err)
	}
}

func TestPersonnelUpdate_ReplacesSectionSet(t *testing.T) {
	db := setupTestDB(t)
	svc := newPersonnelService(db)
	ctx := context.Background()

	sections := createSections(t, db, "Comptabilité", "Logistique", "Maintenance")

	created, err := svc.Create(ctx, 0, PersonnelRequest{
		Matricule:     "MAT-103",
		Nom:           "Diallo",
		Qualification: "Technicien",
		Affectation:   "Atelier",
		Sections:      SectionIDList{sections[0]},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(ctx, 0, created.ID, PersonnelRequest{
		Matricule:     "MAT-103",
		Nom:           "Diallo",
		Qualification: "Technicien",
		Affectation:   "Atelier",
		Sections:      SectionIDList{sections[1], sections[2]},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if len(updated.Sections) != 2 {
		t.Fatalf("sections = %v, want exactly the new pair", updated.Sections)
	}
	for _, s := range updated.Sections {
		if s.ID == sections[0] {
			t.Errorf("old section %d survived the replace", sections[0])
		}
	}
}

func TestPersonnelUpdate_InvalidSectionLeavesEverythingUnchanged(t *testing.T) {
	db := setupTestDB(t)
	svc := newPersonnelService(db)
	ctx := context.Background()

	sections := createSections(t, db, "Comptabilité")

	created, err := svc.Create(ctx, 0, PersonnelRequest{
		Matricule:     "MAT-104",
		Nom:           "Diallo",
		Qualification: "Technicien",
		Affectation:   "Atelier",
		Sections:      SectionIDList{sections[0]},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.Update(ctx, 0, created.ID, PersonnelRequest{
		Matricule:     "MAT-104-CHANGED",
		Nom:           "Autre",
		Qualification: "Autre",
		Affectation:   "Autre",
		Sections:      SectionIDList{sections[0], 99999},
	})
	if !errors.Is(err, apperror.ErrBadSectionRef) {
		t.Fatalf("error = %v, want ErrBadSectionRef kind", err)
	}

	// The transaction rolls back the field changes with the relation.
	current, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if current.Matricule != "MAT-104" || current.Nom != "Diallo" {
		t.Errorf("fields changed after failed update: %+v", current)
	}
	if len(current.Sections) != 1 || current.Sections[0].ID != sections[0] {
		t.Errorf("relation set changed after failed update: %v", current.Sections)
	}
}

func TestPersonnelSectionIDs(t *testing.T) {
	db := setupTestDB(t)
	svc := newPersonnelService(db)
	ctx := context.Background()

	sections := createSections(t, db, "Comptabilité")
	created, err := svc.Create(ctx, 0, PersonnelRequest{
		Matricule:     "MAT-105",
		Nom:           "Diallo",
		Qualification: "Technicien",
		Affectation:   "Atelier",
		Sections:      SectionIDList(sections),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	ids, err := svc.SectionIDs(ctx, created.ID)
	if err != nil {
		t.Fatalf("section ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != sections[0] {
		t.Errorf("ids = %v, want [%d]", ids, sections[0])
	}

	if _, err := svc.SectionIDs(ctx, 99999); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestPersonnelDelete_RemovesJoinRows(t *testing.T) {
	db := setupTestDB(t)
	svc := newPersonnelService(db)
	ctx := context.Background()

	sections := createSections(t, db, "Comptabilité")
	created, err := svc.Create(ctx, 0, PersonnelRequest{
		Matricule:     "MAT-106",
		Nom:           "Diallo",
		Qualification: "Technicien",
		Affectation:   "Atelier",
		Sections:      SectionIDList(sections),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, 0, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var joinRows int64
	if err := db.Model(&model.PersonnelSection{}).Count(&joinRows).Error; err != nil {
		t.Fatalf("count joins: %v", err)
	}
	if joinRows != 0 {
		t.Errorf("join rows = %d after delete, want 0", joinRows)
	}

	if _, err := svc.Get(ctx, created.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestSectionDelete_RemovesAssignments(t *testing.T) {
	db := setupTestDB(t)
	personnelSvc := newPersonnelService(db)
	sectionSvc := NewSectionService(
		repository.NewSectionRepository(db),
		repository.NewPersonnelSectionRepository(db),
		repository.NewAuditRepository(db),
		repository.NewTransactionManager(db),
		nil,
	)
	ctx := context.Background()

	sections := createSections(t, db, "Comptabilité", "Logistique")
	created, err := personnelSvc.Create(ctx, 0, PersonnelRequest{
		Matricule:     "MAT-107",
		Nom:           "Diallo",
		Qualification: "Technicien",
		Affectation:   "Atelier",
		Sections:      SectionIDList(sections),
	})
	if err != nil {
		t.Fatalf("create personnel: %v", err)
	}

	if err := sectionSvc.Delete(ctx, 0, sections[0]); err != nil {
		t.Fatalf("delete section: %v", err)
	}

	ids, err := personnelSvc.SectionIDs(ctx, created.ID)
	if err != nil {
		t.Fatalf("section ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != sections[1] {
		t.Errorf("ids = %v, want only the surviving section %d", ids, sections[1])
	}
}
