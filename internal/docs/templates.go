package docs

const scopeTemplate = `# {{ .ExecutiveSummary.ProjectName }}

*Scope document{{ if .Version }} v{{ .Version }}{{ end }} for conversation {{ code .ConversationID }}, generated {{ date .GeneratedAt }}.*

## 1. Executive Summary

{{ .ExecutiveSummary.Overview }}
{{ if .ExecutiveSummary.Objectives }}
**Objectives**
{{ range .ExecutiveSummary.Objectives }}
- {{ . }}
{{- end }}
{{ end }}
{{- if .ExecutiveSummary.KeyDeliverables }}
**Key deliverables**
{{ range .ExecutiveSummary.KeyDeliverables }}
- {{ . }}
{{- end }}
{{ end }}
## 2. Project Classification

| | |
|---|---|
| Website type | {{ .Classification.WebsiteType }} |
| Complexity | {{ .Classification.Complexity }} (score {{ .Classification.ComplexityScore }}) |
| Package | {{ title .Classification.PackageTier }} (from {{ .Classification.TierSource }}) |
{{ if .Classification.ScoreFactors }}
| Score factor | Points |
|---|---|
{{ range .Classification.ScoreFactors }}| {{ cell .Reason }} | {{ .Points }} |
{{ end }}
{{- end }}
## 3. Client Information

- **Name:** {{ .ClientInfo.Name }}
- **Email:** {{ .ClientInfo.Email }}
{{- with .ClientInfo.Phone }}
- **Phone:** {{ . }}
{{- end }}
{{- with .ClientInfo.Company }}
- **Company:** {{ . }}
{{- end }}
{{- with .ClientInfo.Industry }}
- **Industry:** {{ . }}
{{- end }}
{{- with .ClientInfo.ExistingWebsite }}
- **Existing website:** {{ . }}
{{- end }}

## 4. Business Context

{{ .BusinessContext.CompanyOverview }}

- **Target audience:** {{ .BusinessContext.TargetAudience }}
- **Primary goal:** {{ .BusinessContext.PrimaryGoal }}
{{- with .BusinessContext.ProblemStatement }}
- **Problem:** {{ . }}
{{- end }}
{{- with .BusinessContext.UniqueValue }}
- **Unique value:** {{ . }}
{{- end }}
{{- with .BusinessContext.Competitors }}
- **Competitors:** {{ join . }}
{{- end }}
{{- with .BusinessContext.SuccessMetrics }}
- **Success metrics:** {{ join . }}
{{- end }}
{{ if .BusinessContext.AdditionalNotes }}
**Additional notes**

| Topic | Answer |
|---|---|
{{ range .BusinessContext.AdditionalNotes }}| {{ cell .Topic }} | {{ cell .Answer }} |
{{ end }}
{{- end }}
## 5. Brand Assets

- **Logo:** {{ .BrandAssets.LogoStatus }}
- **Brand guidelines:** {{ .BrandAssets.BrandGuidelines }}
{{- with .BrandAssets.ColorPreferences }}
- **Colors:** {{ join . }}
{{- end }}
{{- with .BrandAssets.Typography }}
- **Typography:** {{ . }}
{{- end }}

## 6. Content Strategy

- **Content responsibility:** {{ .ContentStrategy.ContentResponsibility }}
- **Estimated pages:** {{ .ContentStrategy.EstimatedPages }}
- **CMS required:** {{ yesno .ContentStrategy.CMSRequired }}
- **SEO:** {{ .ContentStrategy.SEORequirements }}

## 7. Technical Specifications

- **Hosting:** {{ .TechnicalSpecs.Hosting }} ({{ .TechnicalSpecs.HostingTier }} tier)
- **Domain:** {{ .TechnicalSpecs.Domain }}
- **User accounts:** {{ yesno .TechnicalSpecs.UserAccounts }}
- **Payment processing:** {{ yesno .TechnicalSpecs.PaymentProcessing }}
- **Analytics:** {{ .TechnicalSpecs.Analytics }}
{{- with .TechnicalSpecs.Integrations }}
- **Integrations:** {{ join . }}
{{- end }}
{{- with .TechnicalSpecs.Compliance }}
- **Compliance:** {{ join . }}
{{- end }}
{{- with .TechnicalSpecs.TechPreferences }}
- **Technology preferences:** {{ . }}
{{- end }}

## 8. Media Elements

{{ .MediaElements.Assets }}

- **Photography needed:** {{ yesno .MediaElements.NeedsPhotography }}
- **Video needed:** {{ yesno .MediaElements.NeedsVideo }}

## 9. Design Direction

{{ .DesignDirection.Style }}
{{ with .DesignDirection.Inspiration }}
- **Inspiration:** {{ join . }}
{{- end }}
{{- with .DesignDirection.Dislikes }}
- **Avoid:** {{ join . }}
{{- end }}

## 10. Features Breakdown
{{ if .FeaturesBreakdown.Selected }}
| Feature | Category | Pricing | Price |
|---|---|---|---|
{{ range .FeaturesBreakdown.Selected }}| {{ cell .Name }} | {{ .Category }} | {{ .Pricing }} | {{ money .Price }} |
{{ end }}
{{- else }}
No catalog features selected.
{{ end }}
{{- with .FeaturesBreakdown.AdditionalRequests }}
**Additional requests:** {{ join . }}
{{ end }}
{{- with .FeaturesBreakdown.Conflicts }}
**Conflicts**
{{ range . }}
- {{ .FeatureA }} / {{ .FeatureB }}: {{ .Reason }} ({{ .Resolution }})
{{- end }}
{{ end }}
{{- with .FeaturesBreakdown.MissingDependencies }}
**Missing dependencies**
{{ range . }}
- {{ .Feature }} needs {{ join .MissingDeps }}
{{- end }}
{{ end }}
{{- with .FeaturesBreakdown.Recommended }}
**Recommended:** {{ join . }}
{{ end }}
## 11. Support Plan

- **Plan:** {{ .SupportPlan.Plan }}
- **Maintenance:** {{ .SupportPlan.MaintenanceHours }} hours per month
- **Training sessions:** {{ .SupportPlan.TrainingSessions }}
- **Warranty:** {{ .SupportPlan.WarrantyDays }} days

## 12. Timeline

- **Requested:** {{ .Timeline.Requested }}
- **Estimated:** {{ .Timeline.EstimatedWeeks }} weeks{{ if not .Timeline.Feasible }} (exceeds the requested timeline){{ end }}

| Phase | Weeks |
|---|---|
{{ range .Timeline.Phases }}| {{ .Name }} | {{ .Weeks }} |
{{ end }}
{{- with .Timeline.Notes }}
{{ . }}
{{ end }}
## 13. Investment Summary

| Item | Amount |
|---|---|
| {{ title .InvestmentSummary.Package }} package | {{ money .InvestmentSummary.BasePrice }} |
| Add-on features | {{ money .InvestmentSummary.AddonTotal }} |
{{ range .InvestmentSummary.Discounts }}| {{ cell .Name }} discount | -{{ money .Amount }} |
{{ end }}| **Project total** | **{{ money .InvestmentSummary.ProjectTotal }}** |
| Hosting ({{ .InvestmentSummary.HostingTier }}, {{ money .InvestmentSummary.HostingMonthly }}/month) | {{ money .InvestmentSummary.HostingAnnual }} |
| **First-year total** | **{{ money .InvestmentSummary.FirstYearTotal }}** |
{{ with .InvestmentSummary.StatedBudget }}
Stated budget: {{ . }}
{{ end }}
**Payment schedule**

| Milestone | Share | Amount |
|---|---|---|
{{ range .InvestmentSummary.PaymentSchedule }}| {{ .Name }} | {{ percent .Percentage }} | {{ money .Amount }} |
{{ end }}
## 14. Validation

Score: **{{ .Validation.Score }}/100**, {{ if .Validation.Complete }}complete{{ else }}incomplete{{ end }}.
{{ if .Validation.Issues }}
| Severity | Section | Field | Message |
|---|---|---|---|
{{ range .Validation.Issues }}| {{ .Severity }} | {{ .Section }} | {{ .Field }} | {{ cell .Message }} |
{{ end }}
{{- else }}
No issues found.
{{ end }}`

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{ .Title }}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; max-width: 960px; margin: 2rem auto; padding: 0 1rem; color: #1f2328; line-height: 1.5; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #d0d7de; padding: 0.35rem 0.75rem; text-align: left; }
h2 { border-bottom: 1px solid #d0d7de; padding-bottom: 0.3rem; margin-top: 2rem; }
pre { padding: 1rem; overflow-x: auto; border-radius: 6px; }
</style>
</head>
<body>
{{ .Body }}
</body>
</html>
`
