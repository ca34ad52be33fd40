package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/liftfield/internal/client/models"
	"github.com/dmitrijs2005/liftfield/internal/client/services"
)

// Docs prints the document library grouped by category.
func (a *App) Docs(ctx context.Context) error {
	docs, src, err := a.docs.List(ctx)
	if err != nil {
		printlnFn("Cannot list documents:", err.Error())
		return err
	}
	if src == services.SourceCache && !a.docs.Local() {
		printlnFn("(showing locally cached data)")
	}

	printDocuments(docs)
	return nil
}

func printDocuments(docs []models.Document) {
	if len(docs) == 0 {
		printlnFn("No documents")
		return
	}

	byCategory := map[string][]models.Document{}
	var order []string
	for _, d := range docs {
		if _, seen := byCategory[d.Category]; !seen {
			order = append(order, d.Category)
		}
		byCategory[d.Category] = append(byCategory[d.Category], d)
	}

	for _, cat := range order {
		printlnFn(models.CategoryTitle(cat) + ":")
		for _, d := range byCategory[cat] {
			printlnFn(fmt.Sprintf("  [%s] %s — %s", d.ID, d.Name, d.URL))
		}
	}
}

// AddDoc interactively collects a document and stores it.
func (a *App) AddDoc(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Document name", os.Stdout)
	if err != nil {
		return err
	}
	url, err := getSimpleText(a.reader, "Document URL (absolute)", os.Stdout)
	if err != nil {
		return err
	}
	category, err := getSimpleText(a.reader, "Category (empty for personal)", os.Stdout)
	if err != nil {
		return err
	}

	doc, err := a.docs.Add(ctx, models.Document{Name: name, URL: url, Category: category})
	if err != nil {
		printlnFn("Cannot add document:", err.Error())
		return err
	}
	printlnFn("Added document", doc.ID)
	return nil
}

// DelDoc deletes one document by ID.
func (a *App) DelDoc(ctx context.Context, id string) error {
	if err := a.docs.Delete(ctx, id); err != nil {
		printlnFn("Cannot delete document:", err.Error())
		return err
	}
	printlnFn("Deleted document", id)
	return nil
}

// ClearDocs deletes the whole library after confirmation.
func (a *App) ClearDocs(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, "Delete ALL documents? (y/N)", os.Stdout)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") {
		printlnFn("Cancelled")
		return nil
	}

	n, err := a.docs.Clear(ctx)
	if err != nil {
		printlnFn("Cannot clear documents:", err.Error())
		return err
	}
	printlnFn(fmt.Sprintf("Deleted %d document(s)", n))
	return nil
}

// Search filters the library by a name or category substring.
func (a *App) Search(ctx context.Context, query string) error {
	docs, _, err := a.docs.Search(ctx, query)
	if err != nil {
		printlnFn("Search failed:", err.Error())
		return err
	}
	printDocuments(docs)
	return nil
}
