package database

import (
	"context"

	"github.com/rpupo63/portfolio-cms-backend/models"
)

func strPtr(s string) *string {
	return &s
}

// sampleProjects are shown on a fresh install so the site is never empty
func sampleProjects() []models.Project {
	return []models.Project{
		{
			Title:        "Arbor Cove Funding",
			Description:  "A boutique business funding brokerage needed a professional, conversion-focused website to establish credibility and capture qualified leads.",
			Category:     "FINANCIAL SERVICES",
			Features:     models.NewProjectFeatures([]string{"Lead qualification forms", "Custom branding", "Mobile-responsive"}),
			LiveURL:      strPtr("https://preview--arborcove-capital-connect.lovable.app/"),
			ImageURL:     strPtr("assets/arbor-cove-screenshot.png"),
			ImageAlt:     strPtr("Arbor Cove Funding custom website design"),
			DisplayOrder: 1,
			IsActive:     true,
		},
		{
			Title:        "Law Office of Sylvester R. Jaime",
			Description:  "A professional law practice needed a clean, authoritative website to attract clients and showcase legal expertise.",
			Category:     "LEGAL SERVICES",
			Features:     models.NewProjectFeatures([]string{"Professional design", "Easy navigation", "Contact integration"}),
			LiveURL:      strPtr("https://preview--sylvester-jaime-website.lovable.app/"),
			ImageURL:     strPtr("assets/sylvester-jaime-screenshot.png"),
			ImageAlt:     strPtr("Law office website design by Smart Scale"),
			DisplayOrder: 2,
			IsActive:     true,
		},
	}
}

// SeedSampleProjects inserts the sample projects when no project exists yet
func (d Database) SeedSampleProjects(ctx context.Context) (bool, error) {
	count, err := d.projectRepo.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	for _, project := range sampleProjects() {
		if err := d.projectRepo.Add(ctx, &project); err != nil {
			return false, err
		}
	}
	return true, nil
}
