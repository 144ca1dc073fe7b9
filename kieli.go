// Package kieli is a quota-aware translation caching engine for
// short-lived news content.
//
// Kieli decides, for every inbound translation request, whether a cached
// result can be served, whether a fresh call to the translation backend
// is permitted under daily quotas, and how cache entries and counters
// are created, validated, expired and cleaned up.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/uutislabs/kieli"
//	    "github.com/uutislabs/kieli/cache"
//	    "github.com/uutislabs/kieli/provider"
//	    "github.com/uutislabs/kieli/store"
//	)
//
//	func main() {
//	    st, _ := store.NewFileStore("./data")
//	    p, _ := provider.NewAzureProvider(provider.AzureConfig{
//	        Key: os.Getenv("AZURE_TRANSLATOR_KEY"),
//	    })
//
//	    t := kieli.NewTranslator(p,
//	        kieli.WithCache(cache.NewManager(st, 24*time.Hour)),
//	        kieli.WithLimiter(kieli.NewDailyLimiter(st), 50),
//	    )
//
//	    res, err := t.Translate(context.Background(), kieli.TranslateRequest{
//	        ArticleID:  "yle-2024-11-02-8312",
//	        SourceLang: "fi",
//	        TargetLang: "en",
//	        Paragraphs: []string{"Moi"},
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(res.Translations[0], res.CacheHit)
//	}
package kieli
