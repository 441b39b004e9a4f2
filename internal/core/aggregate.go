package core

import "sort"

// CategoryGroups buckets emails by their own category label, keeping labels
// in the order they were first seen
type CategoryGroups struct {
	labels  []string
	buckets map[string][]*Email
}

// GroupByCategory places every email in exactly one bucket keyed by its
// category. Labels need not belong to the predefined set; emails without a
// category go to UncategorizedLabel.
func GroupByCategory(emails []*Email) *CategoryGroups {
	groups := &CategoryGroups{
		buckets: make(map[string][]*Email),
	}
	for _, email := range emails {
		label := email.CategoryLabel()
		if _, ok := groups.buckets[label]; !ok {
			groups.labels = append(groups.labels, label)
		}
		groups.buckets[label] = append(groups.buckets[label], email)
	}
	return groups
}

// Labels returns the bucket labels in first-seen order
func (g *CategoryGroups) Labels() []string {
	out := make([]string, len(g.labels))
	copy(out, g.labels)
	return out
}

// Get returns the emails assigned to label
func (g *CategoryGroups) Get(label string) []*Email {
	return g.buckets[label]
}

// Len returns the number of buckets
func (g *CategoryGroups) Len() int {
	return len(g.labels)
}

// Counts returns the number of emails per label
func (g *CategoryGroups) Counts() map[string]int {
	counts := make(map[string]int, len(g.buckets))
	for label, emails := range g.buckets {
		counts[label] = len(emails)
	}
	return counts
}

// RankActionRequired returns the emails needing follow-up ordered by
// descending priority. Ties keep retrieval order and unset priorities sink
// to the bottom.
func RankActionRequired(emails []*Email) []*Email {
	ranked := make([]*Email, 0, len(emails))
	for _, email := range emails {
		if email.ActionRequired {
			ranked = append(ranked, email)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PriorityRank() > ranked[j].PriorityRank()
	})
	return ranked
}
