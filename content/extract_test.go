package content

import (
	"testing"

	"github.com/uutislabs/kieli"
)

func TestExtract_BasicParagraphs(t *testing.T) {
	html := `<html><body>
		<p>Hallitus kokoontui tänään.</p>
		<p>Päätöksiä odotetaan huomenna.</p>
	</body></html>`

	paragraphs, err := ExtractParagraphs(html)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(paragraphs) != 2 {
		t.Fatalf("Expected 2 paragraphs, got %d: %v", len(paragraphs), paragraphs)
	}
	if paragraphs[0] != "Hallitus kokoontui tänään." {
		t.Errorf("Unexpected first paragraph: %q", paragraphs[0])
	}
	if paragraphs[1] != "Päätöksiä odotetaan huomenna." {
		t.Errorf("Unexpected second paragraph: %q", paragraphs[1])
	}
}

func TestExtract_PrefersArticleElement(t *testing.T) {
	html := `<html><body>
		<p>Sivupalkin teksti.</p>
		<article>
			<p>Varsinainen uutinen.</p>
		</article>
	</body></html>`

	paragraphs, err := ExtractParagraphs(html)
	if err != nil {
		t.Fatal(err)
	}

	if len(paragraphs) != 1 || paragraphs[0] != "Varsinainen uutinen." {
		t.Errorf("Expected only the article paragraph, got %v", paragraphs)
	}
}

func TestExtract_SkipsNonProseContainers(t *testing.T) {
	html := `<html><body>
		<nav><p>Etusivu</p></nav>
		<p>Uutisteksti.</p>
		<aside><p>Lue myös tämä.</p></aside>
		<footer><p>Copyright</p></footer>
		<figure><p>Kuvateksti.</p></figure>
	</body></html>`

	paragraphs, err := ExtractParagraphs(html)
	if err != nil {
		t.Fatal(err)
	}

	if len(paragraphs) != 1 || paragraphs[0] != "Uutisteksti." {
		t.Errorf("Expected only the prose paragraph, got %v", paragraphs)
	}
}

func TestExtract_NormalizesWhitespace(t *testing.T) {
	html := "<p>Rivi\n\tjatkuu   tässä.</p>"

	paragraphs, err := ExtractParagraphs(html)
	if err != nil {
		t.Fatal(err)
	}

	if len(paragraphs) != 1 || paragraphs[0] != "Rivi jatkuu tässä." {
		t.Errorf("Whitespace should collapse to single spaces, got %v", paragraphs)
	}
}

func TestExtract_MinLength(t *testing.T) {
	html := `<p>STT</p><p>Riittävän pitkä kappale tekstiä.</p>`

	extractor := NewExtractor(WithMinLength(10))
	paragraphs, err := extractor.Extract(html)
	if err != nil {
		t.Fatal(err)
	}

	if len(paragraphs) != 1 || paragraphs[0] != "Riittävän pitkä kappale tekstiä." {
		t.Errorf("Short paragraphs should be dropped, got %v", paragraphs)
	}
}

func TestExtract_EmptyDocument(t *testing.T) {
	paragraphs, err := ExtractParagraphs("<html><body></body></html>")
	if err != nil {
		t.Fatal(err)
	}
	if len(paragraphs) != 0 {
		t.Errorf("Expected no paragraphs, got %v", paragraphs)
	}
}

func TestFingerprint(t *testing.T) {
	paragraphs := []string{"Moi", "Terve"}
	if got, want := Fingerprint(paragraphs), kieli.HashParagraphs(paragraphs); got != want {
		t.Errorf("Fingerprint should match the cache fingerprint: %q vs %q", got, want)
	}
}
