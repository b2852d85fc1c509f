package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"sinta-collector/models"
	"sinta-collector/providers"
)

// ImportSummary fasst einen Bulk-Import zusammen.
type ImportSummary struct {
	Rows     int      `json:"rows"`
	Inserted int      `json:"inserted"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// ImportService liest Publikationen aus einer CSV-Datei ein. Spalten werden
// über die Kopfzeile adressiert; Pflicht sind title und name, alles andere
// ist optional.
type ImportService struct {
	DB         *gorm.DB
	Logger     *zap.Logger
	Reconciler *Reconciler
}

// NewImportService erstellt eine neue Instanz des ImportService.
func NewImportService(db *gorm.DB, logger *zap.Logger, rec *Reconciler) *ImportService {
	return &ImportService{DB: db, Logger: logger, Reconciler: rec}
}

// ImportCSV verarbeitet eine CSV-Datei zeilenweise. Fehlerhafte Zeilen
// werden gesammelt statt den Import abzubrechen.
func (s *ImportService) ImportCSV(r io.Reader) (*ImportSummary, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("CSV-Kopfzeile nicht lesbar: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["title"]; !ok {
		return nil, errors.New("CSV ohne title-Spalte")
	}

	summary := &ImportSummary{}
	line := 1

	for {
		row, rerr := reader.Read()
		if rerr == io.EOF {
			break
		}
		line++
		if rerr != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("Zeile %d: %v", line, rerr))
			continue
		}
		summary.Rows++

		if ierr := s.importRow(cols, row); ierr != nil {
			if errors.Is(ierr, errRowSkipped) {
				summary.Skipped++
			} else {
				summary.Errors = append(summary.Errors, fmt.Sprintf("Zeile %d: %v", line, ierr))
			}
			continue
		}
		summary.Inserted++
	}

	s.Logger.Info("CSV-Import abgeschlossen",
		zap.Int("rows", summary.Rows),
		zap.Int("inserted", summary.Inserted),
		zap.Int("skipped", summary.Skipped),
		zap.Int("errors", len(summary.Errors)))
	return summary, nil
}

var errRowSkipped = errors.New("Zeile übersprungen")

func (s *ImportService) importRow(cols map[string]int, row []string) error {
	get := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	title := get("title")
	if title == "" {
		return errors.New("leerer Titel")
	}

	source := strings.ToUpper(get("source"))
	if source == "" {
		source = models.SourceImport
	}

	rec := providers.PaperRecord{
		Source:          source,
		Title:           title,
		PublicationLink: get("url"),
		Journal:         get("journal"),
		Accred:          get("accred"),
		University:      get("university"),
		Year:            providers.ParseInt(get("year")),
		DOI:             providers.CleanDOI(get("doi")),
		AuthorOrder:     providers.ParseInt(get("author_order")),
	}

	author, err := s.resolveAuthor(get("npp"), get("name"))
	if err != nil {
		return err
	}

	existing, err := s.Reconciler.findArticle(rec)
	if err != nil {
		return err
	}
	var articleID uint
	if existing != nil {
		articleID = existing.ID
	} else {
		article := models.Article{
			Title:      rec.Title,
			Source:     rec.Source,
			Year:       rec.Year,
			DOI:        rec.DOI,
			Accred:     rec.Accred,
			ArticleURL: rec.PublicationLink,
			Journal:    rec.Journal,
			University: rec.University,
		}
		if cerr := s.DB.Create(&article).Error; cerr != nil {
			if isDuplicate(cerr) {
				return errRowSkipped
			}
			return cerr
		}
		articleID = article.ID
	}

	if author != nil {
		link := models.PublicationAuthor{
			ArticleID:   articleID,
			AuthorID:    author.ID,
			AuthorOrder: rec.AuthorOrder,
		}
		if lerr := s.DB.Create(&link).Error; lerr != nil && !isDuplicate(lerr) {
			return lerr
		}
	}

	if err := s.applyKeywords(articleID, get("keywords")); err != nil {
		return err
	}

	if existing != nil {
		return errRowSkipped
	}
	return nil
}

// resolveAuthor sucht zuerst über die NPP, dann über den Namen. Eine Zeile
// ohne beides bleibt ein Artikel ohne Verknüpfung.
func (s *ImportService) resolveAuthor(npp, name string) (*models.Author, error) {
	if npp != "" {
		var user models.User
		err := s.DB.Where("npp = ?", npp).First(&user).Error
		if err == nil {
			return s.Reconciler.GetOrCreateAuthor(user.ID)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if name == "" {
		return nil, nil
	}

	user, err := s.Reconciler.GetOrCreateUser(name)
	if err != nil {
		return nil, err
	}
	if npp != "" && user.NPP == "" {
		if uerr := s.DB.Model(user).Update("npp", npp).Error; uerr != nil {
			return nil, uerr
		}
	}
	return s.Reconciler.GetOrCreateAuthor(user.ID)
}

func (s *ImportService) applyKeywords(articleID uint, raw string) error {
	for _, kw := range strings.Split(raw, ";") {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		var keyword models.Keyword
		if err := s.DB.Where("keyword = ?", kw).FirstOrCreate(&keyword, models.Keyword{Keyword: kw}).Error; err != nil {
			return err
		}
		link := models.ArticleKeyword{ArticleID: articleID, KeywordID: keyword.ID}
		if err := s.DB.Create(&link).Error; err != nil && !isDuplicate(err) {
			return err
		}
	}
	return nil
}
