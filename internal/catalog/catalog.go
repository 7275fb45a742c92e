// Package catalog holds the hand-authored Channel 4 Core baseline model.
//
// The baseline is served as the "static" source so a workspace can be
// generated without access to LeanIX.
package catalog

import (
	"context"

	"github.com/synchrotron/c4c4/internal/source"
)

// Provider serves Baseline as a snapshot source.
type Provider struct{}

func (Provider) Name() string { return "static" }

func (Provider) Configure() []source.ConfigQuestion { return nil }

func (Provider) Fetch(ctx context.Context, _ map[string]string) (*source.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Baseline(), nil
}

func team(id, name, description, category string) source.TeamRecord {
	return source.TeamRecord{ID: id, Name: name, Description: description, Category: category}
}

func app(id, name, description, technology string) source.ApplicationRecord {
	return source.ApplicationRecord{ID: id, Name: name, Description: description, Technology: technology}
}

func uses(id, src, dst, label, technology string) source.RelationshipRecord {
	return source.RelationshipRecord{ID: id, SourceID: src, DestinationID: dst, Label: label, Technology: technology}
}

func integration(id, src, dst, label, technology string) source.RelationshipRecord {
	r := uses(id, src, dst, label, technology)
	r.Style = "Integration"
	return r
}

// Baseline returns a fresh copy of the Channel 4 Core model.
func Baseline() *source.Snapshot {
	return &source.Snapshot{
		Workspace: source.WorkspaceRecord{
			Name:        "Channel 4 Core",
			Description: "Base Line Model",
		},
		Teams: []source.TeamRecord{
			team("comFinTeam", "Commercial Finance", "Team that analyse financial data, forecast performance, plan budgets and support strategic decisions.", ""),
			team("allC4", "All Colleagues", "All colleagues working at C4", "Legal Entity"),
			team("finDept", "Finance", "Oversee financial health, ensure compliance, support strategy, manage budgets and reporting", "Business Unit"),
			team("sharedServicesTeam", "Shared Services", "Team that process invoices, management payments, verify expenses, maintain vendor relationships and ensure accuracy.", ""),
			team("taxTeam", "Tax and Treasury", "Team that manage cash, investments, debt and ensure tax compliance and reporting", ""),
			team("peopleOps", "People Ops Team", "The people team help attract, support and grow colleagues within the channel", ""),
		},
		Platforms: []source.PlatformRecord{
			{
				ID:          "fsp",
				Name:        "Finance System Platform",
				Description: "Applications centred around the management of Colleagues and Employees",
				ViewKey:     "FinancePlatform",
				Applications: []source.ApplicationRecord{
					app("ebs", "Oracle e-Business Suite", "Financial System of record", "Hosted App"),
					app("wda", "Workday Adaptive", "Financial Budgeting, Planning and Consolidation application", "SaaS"),
					app("sbi", "SplashBI", "Business Intelligence and Reporting", "BI Tool"),
					app("bsw", "Baseware", "Purchase to Pay solution", "SaaS"),
					app("faf", "Financial Approval Forms", "Approval workflow management", "Web App"),
					app("pjc", "Project Codes", "Project code management", "Web App"),
					app("tgn", "Tungsten Network", "Billing and invoicing network", "SaaS"),
					app("msc", "Mastercard", "Corporate card management", "SaaS"),
					app("cmx", "Cachematrix", "Cash Flow management solution", "SaaS"),
					app("bbp", "Barclays Banking Portal", "Banking operations portal", "SaaS"),
					app("apt", "AlphaTax", "Tax calculation and reporting", "SaaS"),
					app("sov", "Sovos", "Tax compliance solution", "SaaS"),
					app("exr", "Exchange Rates", "Currency exchange rate service", "API"),
				},
			},
			{
				ID:          "hrp",
				Name:        "People Platform",
				Description: "Applications centred around the management of Colleagues and Employees",
				ViewKey:     "PeoplePlatform",
				Applications: []source.ApplicationRecord{
					app("fourPo", "4People", "HCM People System", "SaaS HCM"),
					app("hnd", "Handle", "Freelance payment solution", "SaaS"),
					app("fes", "FES", "Freelancer Engagement Solution", "Hosted"),
				},
			},
			{ID: "cmp", Name: "Commercial Platform", Description: "Commercial operations platform"},
			{ID: "sbs", Name: "Small Business Systems", Description: "Small business management systems"},
			{ID: "c4s", Name: "Channel 4 Streaming Platform", Description: "Content streaming and delivery platform"},
			{ID: "rsp", Name: "Royalties and Sales Platform", Description: "Royalties and sales management"},
		},
		Relationships: []source.RelationshipRecord{
			// Finance platform users
			uses("taxTeamToExr", "taxTeam", "exr", "Tax calculation and reporting", ""),
			uses("taxTeamToSov", "taxTeam", "sov", "Tax calculation and reporting", ""),
			uses("taxTeamToApt", "taxTeam", "apt", "Tax calculation and reporting", ""),
			uses("taxTeamToBbp", "taxTeam", "bbp", "Cash Flow management", "API"),
			uses("taxTeamToCmx", "taxTeam", "cmx", "Cash Flow management", "API"),
			uses("sharedServicesTeamToMsc", "sharedServicesTeam", "msc", "Manages all colleagues spend", "API"),
			uses("sharedServicesTeamToTgn", "sharedServicesTeam", "tgn", "Manages Tungsten billing process", "API"),
			uses("sharedServicesTeamToBsw", "sharedServicesTeam", "bsw", "P2P Process Super User", ""),
			uses("allC4ToPjc", "allC4", "pjc", "Creates new codes for C4 shows", ""),
			uses("allC4ToFaf", "allC4", "faf", "Submits request for sign-off limit changes", ""),
			uses("allC4ToBsw", "allC4", "bsw", "Create/Approve PO", ""),
			uses("allC4ToEbs", "allC4", "ebs", "Create/Approve Expenses", ""),
			uses("finDeptToSbi", "finDept", "sbi", "Create and distribute insights", ""),
			uses("finDeptToEbs", "finDept", "ebs", "AP/AR/GL operation activities", ""),
			uses("cfTeamToWorkday", "comFinTeam", "wda", "Produce plans and Budgets", ""),

			// Finance platform integrations
			integration("ebsToExr", "ebs", "exr", "Financial Data", "File"),
			integration("ebsToWda", "ebs", "wda", "Master and Transactional Data", "ERROR: Bi directional!"),
			integration("splashToEBS", "sbi", "ebs", "Database reads", "VPN"),
			integration("bswToEbs", "bsw", "ebs", "Invoicing and Purchasing Master", "Mule"),
			integration("fafToEbs", "faf", "ebs", "Delegated authority submissions", "Hosted"),
			integration("pjcToEbs", "pjc", "ebs", "Project Master Data", "Automate"),
			integration("tgnToEbs", "tgn", "ebs", "Customer Billing Invoice", "Mule"),
			integration("ebsToCmx", "ebs", "cmx", "Financial Transactional Data", "File"),
			integration("bbpToEbs", "bbp", "ebs", "Bank Statements and Payment files", "Automate"),
			integration("ebsToApt", "ebs", "apt", "Financial Transactional Data", "File"),
			integration("ebsToSov", "ebs", "sov", "Financial Transactional Data", "File"),

			// People platform users
			uses("allC4ToFes", "allC4", "fes", "Freelancer requestors", ""),
			uses("peopleOpsToFes", "peopleOps", "fes", "Management of freelancer process", ""),

			// People platform integrations
			integration("fourPoToWda", "fourPo", "wda", "Colleague Master Data", "CSV File"),
			integration("fesToHnd", "fes", "hnd", "Freelancer contract data", "Email"),
			integration("fesToEbs", "fes", "ebs", "Project codes", "SFTP"),
			integration("hndToEbs", "hnd", "ebs", "Freelancer Invoice Data", "Email"),
		},
		Views: &source.ViewsRecord{
			Landscape: true,
			Platforms: []string{"fsp", "hrp"},
		},
	}
}
