// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package record

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/scoretools/wos-triage/internal/textutil"
)

// doiRe matches a DOI-shaped token: 10. + 4-9 digits + / + suffix.
var doiRe = regexp.MustCompile(`(?i)\b10\.\d{4,9}/[-._;()/:a-z0-9]+\b`)

// Row is the flat normalized form of one record. Every field is a string,
// possibly empty, never absent — downstream matching assumes string inputs.
type Row struct {
	UT                    string
	Title                 string
	Journal               string
	Year                  string
	DOI                   string
	Authors               string
	AuthorEmails          string
	Abstract              string
	FundingText           string
	FundingAgencies       string
	GrantNumbers          string
	AuthorKeywords        string
	KeywordsPlus          string
	CategoriesTraditional string
	CategoriesExtended    string
}

// Columns returns the CSV header for normalized rows, in output order.
func Columns() []string {
	return []string{
		"UT", "Title", "Journal", "Year", "DOI", "Authors", "AuthorEmails",
		"Abstract", "FundingText", "FundingAgencies", "GrantNumbers",
		"AuthorKeywords", "KeywordsPlus",
		"WoSCategoriesTraditional", "WoSCategoriesExtended",
	}
}

// Values returns the row's fields in the same order as Columns.
func (r Row) Values() []string {
	return []string{
		r.UT, r.Title, r.Journal, r.Year, r.DOI, r.Authors, r.AuthorEmails,
		r.Abstract, r.FundingText, r.FundingAgencies, r.GrantNumbers,
		r.AuthorKeywords, r.KeywordsPlus,
		r.CategoriesTraditional, r.CategoriesExtended,
	}
}

// Normalize flattens one raw record into a Row. It never fails: malformed or
// missing substructure yields empty fields, not errors.
func Normalize(raw RawRecord) Row {
	static := submap(raw, "static_data")
	summary := submap(static, "summary")
	fullMD := submap(static, "fullrecord_metadata")

	agencies, grants, fundText := funding(static, fullMD)
	authorKW, kwPlus := keywords(static, fullMD)
	trad, ext := categories(fullMD)

	return Row{
		UT:                    UniqueID(raw),
		Title:                 titleOfType(summary, "item"),
		Journal:               titleOfType(summary, "source"),
		Year:                  ExtractText(valueAt(summary, "pub_info", "pubyear")),
		DOI:                   doi(raw, summary, fullMD),
		Authors:               authors(summary),
		AuthorEmails:          authorEmails(summary),
		Abstract:              abstract(fullMD),
		FundingText:           fundText,
		FundingAgencies:       agencies,
		GrantNumbers:          grants,
		AuthorKeywords:        authorKW,
		KeywordsPlus:          kwPlus,
		CategoriesTraditional: trad,
		CategoriesExtended:    ext,
	}
}

// UniqueID returns the record's UT accession number, tolerating either
// key casing the API has been seen to use.
func UniqueID(raw RawRecord) string {
	if s, ok := raw["UID"].(string); ok && s != "" {
		return s
	}
	if s, ok := raw["uid"].(string); ok && s != "" {
		return s
	}
	return ""
}

// valueAt returns the value reached by walking keys, where every key except
// the last must lead through an object. Absent links yield nil.
func valueAt(m map[string]any, keys ...string) any {
	if len(keys) == 0 || m == nil {
		return nil
	}
	parent := submap(m, keys[:len(keys)-1]...)
	if parent == nil {
		return nil
	}
	return parent[keys[len(keys)-1]]
}

// titleOfType picks the title entry whose type matches wantedType from
// summary.titles.title ("item" is the article title, "source" the journal).
func titleOfType(summary map[string]any, wantedType string) string {
	for _, t := range AsList(valueAt(summary, "titles", "title")) {
		entry, ok := t.(map[string]any)
		if !ok {
			continue
		}
		if !strings.EqualFold(ExtractText(entry["type"]), wantedType) {
			continue
		}
		if s, ok := entry["content"].(string); ok && s != "" {
			return strings.TrimSpace(s)
		}
		if s, ok := entry["value"].(string); ok && s != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// doi returns the structured DOI identifier if one exists, otherwise scans
// the record's text representation for a DOI-shaped token as a last resort.
func doi(raw RawRecord, summary, fullMD map[string]any) string {
	for _, block := range []any{valueAt(summary, "identifiers"), valueAt(fullMD, "identifiers")} {
		ids, ok := block.(map[string]any)
		if !ok {
			continue
		}
		for _, item := range AsList(ids["identifier"]) {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			idType := ExtractText(entry["type"])
			if idType == "" {
				idType = ExtractText(entry["@type"])
			}
			if !strings.EqualFold(idType, "doi") {
				continue
			}
			if s := ExtractText(entry["value"]); s != "" {
				return s
			}
			if s := ExtractText(entry["content"]); s != "" {
				return s
			}
		}
	}
	return doiRe.FindString(fmt.Sprint(map[string]any(raw)))
}

func abstract(fullMD map[string]any) string {
	parts := make([]string, 0, 1)
	for _, a := range AsList(valueAt(fullMD, "abstracts", "abstract")) {
		parts = append(parts, ExtractText(a))
	}
	return textutil.CollapseWhitespace(strings.Join(parts, " "))
}

// funding gathers the free-text funding acknowledgement plus deduplicated
// agency and grant-number lists. fund_ack blocks appear under static_data or
// fullrecord_metadata depending on record vintage; grant details live either
// directly on the block or nested under grants.grant.
func funding(static, fullMD map[string]any) (agencies, grants, fundText string) {
	var blocks []map[string]any
	for _, candidate := range []any{valueAt(static, "fund_ack"), valueAt(fullMD, "fund_ack")} {
		for _, fa := range AsList(candidate) {
			if m, ok := fa.(map[string]any); ok {
				blocks = append(blocks, m)
			}
		}
	}

	var agencyList, grantList []string
	for _, fa := range blocks {
		if fundText == "" {
			for _, key := range []string{"fund_text", "funding_text", "text"} {
				if s := ExtractText(fa[key]); s != "" {
					fundText = s
					break
				}
			}
		}
		for _, ag := range AsList(fa["fund_agency"]) {
			agencyList = append(agencyList, ExtractText(ag))
		}
		grantNos := fa["grant_no"]
		if grantNos == nil {
			grantNos = fa["grant_number"]
		}
		for _, gr := range AsList(grantNos) {
			grantList = append(grantList, ExtractText(gr))
		}

		grantsBlock, _ := fa["grants"].(map[string]any)
		if grantsBlock == nil {
			continue
		}
		for _, g := range AsList(grantsBlock["grant"]) {
			entry, ok := g.(map[string]any)
			if !ok {
				continue
			}
			agencyList = append(agencyList, firstText(entry, "grant_agency", "agency", "funding_agency"))
			grantList = append(grantList, firstText(entry, "grant_id", "grant_number", "grant_no"))
		}
	}

	agencies = strings.Join(textutil.DedupeKeepOrder(agencyList), "; ")
	grants = strings.Join(textutil.DedupeKeepOrder(grantList), "; ")
	return agencies, grants, fundText
}

func keywords(static, fullMD map[string]any) (authorKW, kwPlus string) {
	var akw []string
	for _, kw := range AsList(valueAt(fullMD, "keywords", "keyword")) {
		akw = append(akw, ExtractText(kw))
	}
	var plus []string
	for _, kw := range AsList(valueAt(static, "item", "keywords_plus", "keyword")) {
		plus = append(plus, ExtractText(kw))
	}
	return strings.Join(textutil.DedupeKeepOrder(akw), "; "),
		strings.Join(textutil.DedupeKeepOrder(plus), "; ")
}

// categories partitions subject entries into traditional and extended by
// the ascatype attribute; entries without it default to traditional.
func categories(fullMD map[string]any) (trad, ext string) {
	var tradList, extList []string
	for _, s := range AsList(valueAt(fullMD, "category_info", "subjects", "subject")) {
		entry, ok := s.(map[string]any)
		if !ok {
			if txt := ExtractText(s); txt != "" {
				tradList = append(tradList, txt)
			}
			continue
		}
		asc := ExtractText(entry["ascatype"])
		if asc == "" {
			asc = ExtractText(entry["@ascatype"])
		}
		txt := ExtractText(entry["subject"])
		if txt == "" {
			txt = ExtractText(entry)
		}
		if txt == "" {
			continue
		}
		if strings.EqualFold(asc, "extended") {
			extList = append(extList, txt)
		} else {
			tradList = append(tradList, txt)
		}
	}
	return strings.Join(textutil.DedupeKeepOrder(tradList), "; "),
		strings.Join(textutil.DedupeKeepOrder(extList), "; ")
}

func authors(summary map[string]any) string {
	var names []string
	for _, n := range AsList(valueAt(summary, "names", "name")) {
		entry, ok := n.(map[string]any)
		if !ok {
			continue
		}
		if full, ok := entry["full_name"].(string); ok && full != "" {
			names = append(names, full)
		}
	}
	return strings.Join(names, "; ")
}

func authorEmails(summary map[string]any) string {
	var emails []string
	for _, n := range AsList(valueAt(summary, "names", "name")) {
		entry, ok := n.(map[string]any)
		if !ok {
			continue
		}
		if e := firstText(entry, "email_addr", "email", "emailAddress"); e != "" {
			emails = append(emails, e)
		}
	}
	return strings.Join(textutil.DedupeKeepOrder(emails), "; ")
}

// firstText returns the extracted text of the first key that yields any.
func firstText(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := ExtractText(m[k]); s != "" {
			return s
		}
	}
	return ""
}
