package collector

// Facebook DOM selectors
// These are isolated here because Facebook changes their DOM frequently
// Update these when extraction breaks

// postSelectors are the candidate element groups for post content, tried in
// priority order until enough distinct posts are collected.
var postSelectors = []string{
	`[data-ad-preview="message"]`,        // post content
	`[role="article"]`,                   // article containers
	`div[class*="userContentWrapper"]`,   // legacy
	`div.x1yztbdb`,                       // newer FB class pattern
}

// authorSelectors locate the author name within a post element.
var authorSelectors = []string{
	`a[role="link"] strong`,
	`h2 span`,
	`strong > span`,
	`a[aria-label]`,
}

// permalinkSelector finds the timestamp link that usually carries the post URL.
const permalinkSelector = `a[href*="/posts/"], a[href*="/permalink/"], a[href*="/photo"]`
