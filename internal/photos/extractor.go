package photos

import "regexp"

// DefaultPattern 相册页面内嵌数据中照片条目的匹配模式
// 条目形如 ["AF1Q...",["https://lh3.googleusercontent.com/...",w,h,...]，捕获组为图片基础地址
const DefaultPattern = `\["AF1Q.*?",\["(.*?)",`

var defaultRegexp = regexp.MustCompile(DefaultPattern)

// Extractor 从相册页面正文中提取照片 URL
type Extractor interface {
	Extract(body string) []string
}

// RegexExtractor 基于正则的提取器
type RegexExtractor struct {
	re *regexp.Regexp
}

// NewRegexExtractor 创建提取器，re 为 nil 时使用 DefaultPattern
// 自定义模式必须至少包含一个捕获组，第一个捕获组作为结果
func NewRegexExtractor(re *regexp.Regexp) *RegexExtractor {
	if re == nil {
		re = defaultRegexp
	}
	return &RegexExtractor{re: re}
}

// Extract 按出现顺序返回所有捕获值，无匹配时返回空切片
func (e *RegexExtractor) Extract(body string) []string {
	matches := e.re.FindAllStringSubmatch(body, -1)
	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		if len(m) < 2 {
			continue
		}
		urls = append(urls, m[1])
	}
	return urls
}
