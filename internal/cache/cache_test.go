package cache_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/Skidy89/simple-language-loader/internal/cache"
	"github.com/Skidy89/simple-language-loader/internal/loader"
	"github.com/Skidy89/simple-language-loader/internal/parser"
)

type countingBuilder struct {
	inner  cache.Builder
	builds atomic.Int32
}

func (b *countingBuilder) Load(ctx context.Context, dir string) (loader.Table, error) {
	b.builds.Add(1)
	return b.inner.Load(ctx, dir)
}

func writeLang(dir, name, content string) {
	ExpectWithOffset(1, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)).To(Succeed())
}

var _ = Describe("Resident cache", func() {
	var (
		dir      string
		builder  *countingBuilder
		resident *cache.Resident
		ctx      context.Context
	)

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "langcache")
		Expect(err).NotTo(HaveOccurred())

		writeLang(dir, "en.lang", `hello = hello world`)
		writeLang(dir, "fr.lang", `hello = bonjour`)

		ctx = context.Background()
		builder = &countingBuilder{inner: loader.New("", 2)}
		resident = cache.New(builder)
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	It("builds once and serves repeated loads from memory", func() {
		first, err := resident.LoadOrBuild(ctx, dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(first["en"]["hello"]).To(Equal("hello world"))

		writeLang(dir, "en.lang", `hello = changed on disk`)

		second, err := resident.LoadOrBuild(ctx, dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(second["en"]["hello"]).To(Equal("hello world"))
		Expect(builder.builds.Load()).To(BeEquivalentTo(1))

		stats := resident.Stats()
		Expect(stats.Hits).To(Equal(1))
		Expect(stats.Misses).To(Equal(1))
		Expect(stats.Builds).To(Equal(1))
		Expect(stats.Resident).To(BeTrue())
		Expect(stats.LastBuildAt.IsZero()).To(BeFalse())
	})

	It("re-reads from disk after invalidation", func() {
		_, err := resident.LoadOrBuild(ctx, dir)
		Expect(err).NotTo(HaveOccurred())

		writeLang(dir, "en.lang", `hello = changed on disk`)
		resident.Invalidate()
		Expect(resident.Stats().Resident).To(BeFalse())

		table, err := resident.LoadOrBuild(ctx, dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(table["en"]["hello"]).To(Equal("changed on disk"))
		Expect(builder.builds.Load()).To(BeEquivalentTo(2))
	})

	It("hands out copies that cannot corrupt the cached table", func() {
		table, err := resident.LoadOrBuild(ctx, dir)
		Expect(err).NotTo(HaveOccurred())
		table["en"]["hello"] = "mutated"
		delete(table, "fr")

		again, err := resident.LoadOrBuild(ctx, dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(again["en"]["hello"]).To(Equal("hello world"))
		Expect(again).To(HaveKey("fr"))
	})

	It("bypasses the cache for uncached loads", func() {
		_, err := resident.LoadOrBuild(ctx, dir)
		Expect(err).NotTo(HaveOccurred())

		writeLang(dir, "en.lang", `hello = fresh`)
		fresh, err := resident.LoadUncached(ctx, dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(fresh["en"]["hello"]).To(Equal("fresh"))

		cached, err := resident.LoadOrBuild(ctx, dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cached["en"]["hello"]).To(Equal("hello world"))
	})

	It("replaces the slot when another directory is requested", func() {
		other, err := os.MkdirTemp("", "langcache-other")
		Expect(err).NotTo(HaveOccurred())
		defer os.RemoveAll(other)
		writeLang(other, "de.lang", `hello = hallo`)

		_, err = resident.LoadOrBuild(ctx, dir)
		Expect(err).NotTo(HaveOccurred())

		table, err := resident.LoadOrBuild(ctx, other)
		Expect(err).NotTo(HaveOccurred())
		Expect(table).To(Equal(loader.Table{"de": parser.RawTable{"hello": "hallo"}}))
		Expect(resident.Stats().Dir).To(Equal(other))
	})

	It("surfaces build errors and stays empty", func() {
		_, err := resident.LoadOrBuild(ctx, filepath.Join(dir, "en.lang"))
		Expect(errors.Is(err, loader.ErrNotADirectory)).To(BeTrue())
		Expect(resident.Stats().Resident).To(BeFalse())
	})

	It("builds only once under concurrent first access", func() {
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				table, err := resident.LoadOrBuild(ctx, dir)
				Expect(err).NotTo(HaveOccurred())
				Expect(table).To(HaveLen(2))
			}()
		}
		wg.Wait()
		Expect(builder.builds.Load()).To(BeEquivalentTo(1))
	})
})
