package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sinta-collector/models"
)

const importCSV = `title,year,doi,journal,source,name,npp,author_order,keywords
Deteksi Dini Penyakit Padi,2021,10.1234/jtp.123,Jurnal Teknologi Pertanian,GARUDA,Ajib Susanto,0686.11.1996.101,2,computer vision;image processing
Artikel Ohne Autor,2020,,,,,,,
Deteksi Dini Penyakit Padi,2021,,,GARUDA,Ajib Susanto,,,
`

func TestImportCSV(t *testing.T) {
	db := testDB(t)
	rec := NewReconciler(db, zap.NewNop(), DedupTitleSource)
	svc := NewImportService(db, zap.NewNop(), rec)

	summary, err := svc.ImportCSV(strings.NewReader(importCSV))
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Rows)
	assert.Equal(t, 2, summary.Inserted)
	// Die dritte Zeile ist ein Duplikat der ersten.
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, summary.Errors)

	var article models.Article
	require.NoError(t, db.Preload("Authors").Preload("Keywords.Keyword").
		Where("title = ?", "Deteksi Dini Penyakit Padi").First(&article).Error)
	assert.Equal(t, models.SourceGaruda, article.Source)
	require.NotNil(t, article.Year)
	assert.Equal(t, 2021, *article.Year)
	require.NotNil(t, article.DOI)
	assert.Equal(t, "10.1234/jtp.123", *article.DOI)
	require.Len(t, article.Authors, 1)
	require.NotNil(t, article.Authors[0].AuthorOrder)
	assert.Equal(t, 2, *article.Authors[0].AuthorOrder)
	assert.Len(t, article.Keywords, 2)

	// Die NPP landet am User, der Import ohne source-Spalte fällt auf
	// IMPORT zurück.
	var user models.User
	require.NoError(t, db.Where("name = ?", "Ajib Susanto").First(&user).Error)
	assert.Equal(t, "0686.11.1996.101", user.NPP)

	var orphan models.Article
	require.NoError(t, db.Where("title = ?", "Artikel Ohne Autor").First(&orphan).Error)
	assert.Equal(t, models.SourceImport, orphan.Source)

	var linkCount int64
	db.Model(&models.PublicationAuthor{}).Where("article_id = ?", orphan.ID).Count(&linkCount)
	assert.Equal(t, int64(0), linkCount)
}

func TestImportCSVResolvesByNPP(t *testing.T) {
	db := testDB(t)
	rec := NewReconciler(db, zap.NewNop(), DedupTitleSource)
	svc := NewImportService(db, zap.NewNop(), rec)

	// User mit NPP existiert schon unter anderem Namen.
	require.NoError(t, db.Create(&models.User{Name: "AJIB SUSANTO", NPP: "0686.11.1996.101"}).Error)

	csv := "title,name,npp\nNeuer Artikel,Ajib S.,0686.11.1996.101\n"
	summary, err := svc.ImportCSV(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Inserted)

	// Kein zweiter User: die NPP hat Vorrang vor dem Namen.
	var userCount int64
	db.Model(&models.User{}).Count(&userCount)
	assert.Equal(t, int64(1), userCount)
}

func TestImportCSVMissingTitleColumn(t *testing.T) {
	db := testDB(t)
	rec := NewReconciler(db, zap.NewNop(), DedupTitleSource)
	svc := NewImportService(db, zap.NewNop(), rec)

	_, err := svc.ImportCSV(strings.NewReader("name,year\nAjib,2021\n"))
	require.Error(t, err)
}
