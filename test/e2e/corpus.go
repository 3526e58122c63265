// Package e2e provides end-to-end tests over a generated linked corpus.
package e2e

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Document is one generated corpus entry.
type Document struct {
	Name  string
	Topic string
	Links []string
	Body  string
}

// QueryTestCase defines a query and what its results must look like.
type QueryTestCase struct {
	Terms []string
	// Expected must all appear in the results.
	Expected []string
	// First, when set, must be the top result.
	First string
	// Count is the exact number of results expected.
	Count       int
	Description string
}

// Corpus holds documents and query test cases for E2E tests.
type Corpus struct {
	Documents    []Document
	TestCases    []QueryTestCase
	TotalDocs    int
	TotalQueries int
}

var topics = []string{
	"python", "kubernetes", "react", "golang", "postgresql",
	"docker", "learning", "networks", "graphql", "typescript",
	"redis", "elasticsearch", "lambda", "terraform", "prometheus",
	"grpc", "oauth", "kafka", "nginx", "scrum",
}

// hub is linked from every other document, so it carries the highest PageRank.
const hub = "url1"

// BuildCorpus returns a corpus of 100 documents named url1..url100. Document i
// covers topic (i-1) mod 20, links to the hub and to the next document of the
// same topic, and carries a unique signature term.
func BuildCorpus() *Corpus {
	docs := buildDocuments(100)
	cases := buildQueryTestCases(docs)
	return &Corpus{
		Documents:    docs,
		TestCases:    cases,
		TotalDocs:    len(docs),
		TotalQueries: len(cases),
	}
}

func docName(i int) string {
	return fmt.Sprintf("url%d", i)
}

func signature(i int) string {
	return fmt.Sprintf("sig%03d", i)
}

func buildDocuments(n int) []Document {
	out := make([]Document, 0, n)
	for i := 1; i <= n; i++ {
		topic := topics[(i-1)%len(topics)]
		var links []string
		if docName(i) != hub {
			links = append(links, hub)
		}
		if next := i + len(topics); next <= n {
			links = append(links, docName(next))
		}
		// A self-link that must be ignored.
		if i%10 == 0 {
			links = append(links, docName(i))
		}

		var b strings.Builder
		b.WriteString("#start Section-1\n")
		b.WriteString(strings.Join(links, " "))
		b.WriteString("\n#end Section-1\n\n#start Section-2\n")
		fmt.Fprintf(&b, "%s: notes about %s, signature %s.\n", strings.ToUpper(topic[:1])+topic[1:], topic, signature(i))
		b.WriteString("Common words appear everywhere; see url1 for more.\n")
		b.WriteString("#end Section-2\n")

		out = append(out, Document{Name: docName(i), Topic: topic, Links: links, Body: b.String()})
	}
	return out
}

func buildQueryTestCases(docs []Document) []QueryTestCase {
	byTopic := make(map[string][]string)
	for _, d := range docs {
		byTopic[d.Topic] = append(byTopic[d.Topic], d.Name)
	}

	cases := []QueryTestCase{
		{
			Terms:       []string{topics[0]},
			Expected:    byTopic[topics[0]],
			First:       hub,
			Count:       len(byTopic[topics[0]]),
			Description: "hub wins a single-term tie on PageRank",
		},
		{
			Terms:       []string{"common"},
			First:       hub,
			Count:       30,
			Description: "a term in every document is cut to 30 results",
		},
		{
			Terms:       []string{"Python"},
			Count:       0,
			Description: "query terms are not lowercased",
		},
		{
			Terms:       []string{"url1"},
			Count:       0,
			Description: "document names are not indexed",
		},
		{
			Terms:       []string{"section-1"},
			Count:       0,
			Description: "section markers are not indexed",
		},
	}
	for _, topic := range topics[1:6] {
		cases = append(cases, QueryTestCase{
			Terms:       []string{topic},
			Expected:    byTopic[topic],
			Count:       len(byTopic[topic]),
			Description: fmt.Sprintf("topic %q returns its documents", topic),
		})
	}
	for _, i := range []int{7, 42, 100} {
		d := docs[i-1]
		cases = append(cases, QueryTestCase{
			Terms:       []string{signature(i), d.Topic},
			Expected:    byTopic[d.Topic],
			First:       d.Name,
			Count:       len(byTopic[d.Topic]),
			Description: fmt.Sprintf("signature match ranks %s above its topic", d.Name),
		})
	}
	return cases
}

// Names returns the document names in collection order.
func (c *Corpus) Names() []string {
	names := make([]string, len(c.Documents))
	for i, d := range c.Documents {
		names[i] = d.Name
	}
	return names
}

// WriteTo writes collection.txt and one <name><suffix> file per document into dir.
func (c *Corpus) WriteTo(dir, suffix string) error {
	collection := strings.Join(c.Names(), "\n") + "\n"
	if err := os.WriteFile(filepath.Join(dir, "collection.txt"), []byte(collection), 0644); err != nil {
		return err
	}
	for _, d := range c.Documents {
		if err := os.WriteFile(filepath.Join(dir, d.Name+suffix), []byte(d.Body), 0644); err != nil {
			return err
		}
	}
	return nil
}
