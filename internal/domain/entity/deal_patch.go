package entity

// DealPatch is a partial deal update produced by one screen for another.
// Nil fields mean "leave as is". Patches merge last-write-wins per field.
type DealPatch struct {
	Title       *string
	Description *string
	ImageURL    *string
	Votes       *int
	Upvoted     *bool
	Downvoted   *bool
	Favorited   *bool
}

// Merge overlays newer onto p: every non-nil field of newer wins.
func (p DealPatch) Merge(newer DealPatch) DealPatch {
	if newer.Title != nil {
		p.Title = newer.Title
	}
	if newer.Description != nil {
		p.Description = newer.Description
	}
	if newer.ImageURL != nil {
		p.ImageURL = newer.ImageURL
	}
	if newer.Votes != nil {
		p.Votes = newer.Votes
	}
	if newer.Upvoted != nil {
		p.Upvoted = newer.Upvoted
	}
	if newer.Downvoted != nil {
		p.Downvoted = newer.Downvoted
	}
	if newer.Favorited != nil {
		p.Favorited = newer.Favorited
	}

	return p
}

// Apply returns the deal with the patch's non-nil fields overwritten.
func (p DealPatch) Apply(d Deal) Deal {
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.ImageURL != nil {
		d.ImageURL = *p.ImageURL
	}
	if p.Votes != nil {
		d.Votes = *p.Votes
	}
	if p.Upvoted != nil {
		d.Upvoted = *p.Upvoted
	}
	if p.Downvoted != nil {
		d.Downvoted = *p.Downvoted
	}
	if p.Favorited != nil {
		d.Favorited = *p.Favorited
	}

	return d
}

// IsZero reports whether the patch carries no fields at all.
func (p DealPatch) IsZero() bool {
	return p == DealPatch{}
}

// VotePatch builds the patch a detail screen publishes after a vote toggle.
func VotePatch(d Deal) DealPatch {
	votes := d.Votes
	up := d.Upvoted
	down := d.Downvoted
	fav := d.Favorited

	return DealPatch{
		Votes:     &votes,
		Upvoted:   &up,
		Downvoted: &down,
		Favorited: &fav,
	}
}
