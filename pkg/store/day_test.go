package store_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/muninnhq/muninn/pkg/store"
)

var _ = Describe("Day", func() {
	It("truncates an instant to its UTC calendar date", func() {
		instant := time.Date(2026, time.August, 30, 23, 59, 58, 0, time.UTC)
		Expect(store.DayOf(instant).String()).To(Equal("2026-08-30"))
	})

	It("buckets by the UTC date, not the local one", func() {
		// 23:30 in UTC-5 is already the next day in UTC.
		loc := time.FixedZone("UTC-5", -5*60*60)
		instant := time.Date(2026, time.August, 30, 23, 30, 0, 0, loc)
		Expect(store.DayOf(instant).String()).To(Equal("2026-08-31"))
	})

	It("round-trips through ParseDay", func() {
		day, err := store.ParseDay("2026-01-02")
		Expect(err).NotTo(HaveOccurred())
		Expect(day.String()).To(Equal("2026-01-02"))
	})

	It("rejects malformed day names", func() {
		_, err := store.ParseDay("not-a-day")
		Expect(err).To(HaveOccurred())
	})

	It("orders and offsets days", func() {
		day, err := store.ParseDay("2026-08-30")
		Expect(err).NotTo(HaveOccurred())

		earlier := day.AddDays(-1)
		Expect(earlier.String()).To(Equal("2026-08-29"))
		Expect(earlier.Before(day)).To(BeTrue())
		Expect(day.Before(earlier)).To(BeFalse())
		Expect(day.Equal(earlier.AddDays(1))).To(BeTrue())
	})

	It("crosses month boundaries when offsetting", func() {
		day, err := store.ParseDay("2026-03-01")
		Expect(err).NotTo(HaveOccurred())
		Expect(day.AddDays(-1).String()).To(Equal("2026-02-28"))
	})

	It("reports the zero value", func() {
		var zero store.Day
		Expect(zero.IsZero()).To(BeTrue())
		Expect(store.Today().IsZero()).To(BeFalse())
	})
})

var _ = Describe("SaveStatus", func() {
	It("names both durability outcomes", func() {
		Expect(store.SaveDurable.String()).NotTo(BeEmpty())
		Expect(store.SaveDegraded.String()).NotTo(BeEmpty())
		Expect(store.SaveDurable.String()).NotTo(Equal(store.SaveDegraded.String()))
	})
})
