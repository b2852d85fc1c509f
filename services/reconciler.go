package services

import (
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"sinta-collector/models"
	"sinta-collector/providers"
)

// Dedup-Modi für Artikel. title_source ist kanonisch; die beiden anderen
// bilden historisches Verhalten einzelner Quellen ab.
const (
	DedupTitleSource = "title_source"
	DedupTitle       = "title"
	DedupTitleDOI    = "title_doi"
)

// Reconciler überführt die getypten Zwischendatensätze der Provider in das
// relationale Modell: find-or-create über Namen, Dedup über den
// konfigurierten Schlüssel, Verknüpfungen als zweite Phase nach dem
// Eltern-Commit.
type Reconciler struct {
	DB        *gorm.DB
	Logger    *zap.Logger
	DedupMode string
}

// NewReconciler erstellt eine neue Instanz des Reconcilers.
func NewReconciler(db *gorm.DB, logger *zap.Logger, dedupMode string) *Reconciler {
	if dedupMode == "" {
		dedupMode = DedupTitleSource
	}
	return &Reconciler{DB: db, Logger: logger, DedupMode: dedupMode}
}

// GetOrCreateUser sucht einen User exakt über den Namen und legt ihn bei
// Bedarf an. Der Name ist der einzige Schlüssel, den alle Quellen teilen.
func (r *Reconciler) GetOrCreateUser(name string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("leerer Name")
	}
	var user models.User
	if err := r.DB.Where("name = ?", name).FirstOrCreate(&user, models.User{Name: name}).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetOrCreateAuthor stellt sicher, dass zum User ein Author-Datensatz
// existiert.
func (r *Reconciler) GetOrCreateAuthor(userID uint) (*models.Author, error) {
	var author models.Author
	if err := r.DB.Where("user_id = ?", userID).FirstOrCreate(&author, models.Author{UserID: userID}).Error; err != nil {
		return nil, err
	}
	return &author, nil
}

// findAuthorForName löst einen Freitext-Namen auf einen Author auf: erst
// exakt, dann case-insensitiv als Teilstring. nil ohne Fehler, wenn nichts
// passt.
func (r *Reconciler) findAuthorForName(name string) (*models.Author, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	var user models.User
	err := r.DB.Where("name = ?", name).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = r.DB.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%").First(&user).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.GetOrCreateAuthor(user.ID)
}

// findArticle sucht nach dem konfigurierten Dedup-Schlüssel.
func (r *Reconciler) findArticle(rec providers.PaperRecord) (*models.Article, error) {
	var article models.Article
	q := r.DB.Model(&models.Article{})

	switch r.DedupMode {
	case DedupTitle:
		q = q.Where("title = ?", rec.Title)
	case DedupTitleDOI:
		if rec.DOI != nil {
			q = q.Where("title = ? OR doi = ?", rec.Title, *rec.DOI)
		} else {
			q = q.Where("title = ?", rec.Title)
		}
	default:
		q = q.Where("title = ? AND source = ?", rec.Title, rec.Source)
	}

	err := q.First(&article).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// resolveOwner löst die Profilinhaberin auf: erst exakt, dann
// case-insensitiv als Teilstring (Namensvarianten wie "AJIB SUSANTO" vs
// "Ajib Susanto"); erst wenn beides leer ausgeht, wird neu angelegt.
func (r *Reconciler) resolveOwner(name string) (*models.Author, error) {
	author, err := r.findAuthorForName(name)
	if err != nil {
		return nil, err
	}
	if author != nil {
		return author, nil
	}
	user, err := r.GetOrCreateUser(name)
	if err != nil {
		return nil, err
	}
	return r.GetOrCreateAuthor(user.ID)
}

// ReconcilePapers schreibt die Publikationen eines Profils in die DB und
// verknüpft die Profilinhaberin. Rückgabe: eingefügte und übersprungene
// Artikel. Ein kaputter Datensatz wird geloggt und übersprungen, nie
// bricht er den Batch ab.
func (r *Reconciler) ReconcilePapers(ownerName string, papers []providers.PaperRecord) (inserted, skipped int, err error) {
	owner, err := r.resolveOwner(ownerName)
	if err != nil {
		return 0, 0, err
	}

	for _, rec := range papers {
		if rec.Title == "" {
			skipped++
			continue
		}

		existing, ferr := r.findArticle(rec)
		if ferr != nil {
			r.Logger.Warn("Artikel-Lookup fehlgeschlagen, Datensatz übersprungen",
				zap.String("title", rec.Title), zap.Error(ferr))
			skipped++
			continue
		}

		var articleID uint
		if existing != nil {
			skipped++
			articleID = existing.ID
		} else {
			article := models.Article{
				Title:         rec.Title,
				Source:        rec.Source,
				Year:          rec.Year,
				DOI:           rec.DOI,
				Accred:        rec.Accred,
				CitationCount: rec.CitationCount,
				ArticleURL:    rec.PublicationLink,
				Journal:       rec.Journal,
				University:    rec.University,
			}
			// Artikel zuerst committen, erst danach verknüpfen: eine
			// kaputte Verknüpfung darf den Artikel nicht mitreißen.
			if cerr := r.DB.Create(&article).Error; cerr != nil {
				if !isDuplicate(cerr) {
					r.Logger.Warn("Artikel nicht speicherbar, Datensatz übersprungen",
						zap.String("title", rec.Title), zap.Error(cerr))
				}
				skipped++
				continue
			}
			inserted++
			articleID = article.ID
		}

		link := models.PublicationAuthor{
			ArticleID:   articleID,
			AuthorID:    owner.ID,
			AuthorOrder: rec.AuthorOrder,
		}
		if lerr := r.DB.Create(&link).Error; lerr != nil {
			if isDuplicate(lerr) {
				continue
			}
			r.Logger.Warn("Verknüpfung fehlgeschlagen, Artikel bleibt",
				zap.String("title", rec.Title), zap.Error(lerr))
		}
	}

	return inserted, skipped, nil
}

// ReconcileGrants schreibt Forschungsprojekte inklusive aller Personils in
// die DB. Der Leader wird über case-insensitiven Namensvergleich markiert.
// Auch hier gilt: ein kaputter Datensatz wird übersprungen, nicht der Batch.
func (r *Reconciler) ReconcileGrants(grants []providers.GrantRecord) (inserted, skipped int, err error) {
	for _, rec := range grants {
		if rec.Title == "" {
			skipped++
			continue
		}

		var research models.Research
		ferr := r.DB.Where("title = ?", rec.Title).First(&research).Error
		switch {
		case errors.Is(ferr, gorm.ErrRecordNotFound):
			research = models.Research{
				Title:      rec.Title,
				Fund:       rec.Fund,
				FundSource: rec.FundSource,
				FundStatus: rec.FundStatus,
				FundType:   rec.FundType,
				Year:       rec.Year,
				LeaderName: rec.LeaderName,
			}
			if cerr := r.DB.Create(&research).Error; cerr != nil {
				if !isDuplicate(cerr) {
					r.Logger.Warn("Research nicht speicherbar, Datensatz übersprungen",
						zap.String("title", rec.Title), zap.Error(cerr))
				}
				skipped++
				continue
			}
			inserted++
		case ferr != nil:
			r.Logger.Warn("Research-Lookup fehlgeschlagen, Datensatz übersprungen",
				zap.String("title", rec.Title), zap.Error(ferr))
			skipped++
			continue
		default:
			skipped++
		}

		for _, personil := range rec.Personils {
			user, uerr := r.GetOrCreateUser(personil)
			if uerr != nil {
				r.Logger.Warn("Personil nicht anlegbar", zap.String("name", personil), zap.Error(uerr))
				continue
			}
			author, aerr := r.GetOrCreateAuthor(user.ID)
			if aerr != nil {
				r.Logger.Warn("Author nicht anlegbar", zap.String("name", personil), zap.Error(aerr))
				continue
			}

			link := models.ResearcherAuthor{
				ResearchID: research.ID,
				AuthorID:   author.ID,
				IsLeader:   isLeaderName(personil, rec.LeaderName),
			}
			if lerr := r.DB.Create(&link).Error; lerr != nil && !isDuplicate(lerr) {
				r.Logger.Warn("Research-Verknüpfung fehlgeschlagen",
					zap.String("title", rec.Title), zap.String("name", personil), zap.Error(lerr))
			}
		}
	}

	return inserted, skipped, nil
}

// UpsertDirectory schreibt die Verzeichnis-Einträge eines Departments:
// User und Author werden angelegt, die Profilfelder bei jedem Lauf
// überschrieben.
func (r *Reconciler) UpsertDirectory(records []providers.AuthorRecord, department string) (int, error) {
	count := 0
	for _, rec := range records {
		user, err := r.GetOrCreateUser(rec.LecturerName)
		if err != nil {
			r.Logger.Warn("Verzeichnis-Eintrag übersprungen",
				zap.String("name", rec.LecturerName), zap.Error(err))
			continue
		}
		author, err := r.GetOrCreateAuthor(user.ID)
		if err != nil {
			return count, err
		}

		updates := map[string]any{
			"sinta_id":          rec.SintaID,
			"sinta_profile_url": rec.SintaProfileURL,
			"sinta_score_3yr":   rec.SintaScore3Yr,
			"sinta_score_total": rec.SintaScoreTotal,
			"affil_score_3yr":   rec.AffilScore3Yr,
			"affil_score_total": rec.AffilScoreTotal,
		}
		if department != "" {
			updates["department"] = department
		}
		// Der rohe Verzeichnis-Datensatz wandert als jsonb mit: wenn die
		// Quelle Felder umbenennt, steht hier noch, was gescrapt wurde.
		if raw, merr := json.Marshal(rec); merr == nil {
			updates["raw_profile"] = datatypes.JSON(raw)
		}
		if err := r.DB.Model(&models.Author{}).Where("id = ?", author.ID).Updates(updates).Error; err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// ApplySubjects verknüpft die Fachgebiete eines Profils mit dem Author.
// Ein nicht speicherbares Fachgebiet wird geloggt und übersprungen.
func (r *Reconciler) ApplySubjects(authorID uint, names []string) {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		var subject models.Subject
		if err := r.DB.Where("name = ?", name).FirstOrCreate(&subject, models.Subject{Name: name}).Error; err != nil {
			r.Logger.Warn("Fachgebiet nicht speicherbar", zap.String("name", name), zap.Error(err))
			continue
		}
		link := models.UserSubject{AuthorID: authorID, SubjectID: subject.ID}
		if err := r.DB.Create(&link).Error; err != nil && !isDuplicate(err) {
			r.Logger.Warn("Fachgebiets-Verknüpfung fehlgeschlagen", zap.String("name", name), zap.Error(err))
		}
	}
}

// isLeaderName vergleicht einen Personil-Namen case-insensitiv mit dem
// Leader-Feld. Teilstring reicht, weil die Quelle Namen mal mit, mal ohne
// Titel schreibt.
func isLeaderName(name, leader string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	leader = strings.ToLower(strings.TrimSpace(leader))
	if name == "" || leader == "" {
		return false
	}
	return name == leader || strings.Contains(leader, name) || strings.Contains(name, leader)
}

// isDuplicate erkennt Unique-Constraint-Verletzungen über beide Treiber
// (Postgres im Betrieb, SQLite in Tests).
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(strings.ToUpper(msg), "UNIQUE constraint")
}
