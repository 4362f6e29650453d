package sections

import "strings"

// SectionPromptTemplate 章节提取提示词模板
// 包含变量：
// {{.Document}} - 文档内容
const SectionPromptTemplate = `# 角色
你是一个顶级的AI文档结构化引擎。

# 任务
你的核心任务是分析下面提供的文档，将其分解为以一级标题为单位的多个部分，并以指定的JSON格式输出。

# 工作流程
1. 解析文档格式和结构特征
2. 识别并定位所有一级标题
3. 提取每个标题下的文本内容块
4. 过滤移除表格和图片相关部分
5. 生成结构化JSON输出

# 输出格式
你必须返回一个**单一的JSON数组**。数组中的每个对象代表一个章节，并包含以下三个字段：
- index: (Integer) 章节的序号，从1开始，依次递增。
- title: (String) 识别出的一级标题的纯文本。
- content: (String) 该一级标题下方、直到下一个一级标题出现之前的所有内容。

最终输出的JSON结构示例:
[{"index": 1, "title": "...", "content": "..."}, {"index": 2, "title": "...", "content": "..."}]

# 规则与约束
1. 章节以一级标题为界（Markdown的"# "标记或同等级别的结构性标题）。
2. content字段必须包含从当前一级标题开始（不包括标题本身），到下一个一级标题之前的所有文本，包括段落、列表、引言以及所有二级、三级等子标题。
3. title字段应为纯文本，去除任何Markdown标记（如"# "）。
4. 文档开头、在第一个一级标题出现之前的任何内容都应被忽略，不包含在任何章节的content中。
5. 完全排除表格和图片内容，千万不要把它们放到content中。
6. 如果一个一级标题下没有任何内容（紧接着就是下一个一级标题），content字段应为空字符串""。
7. 如果整个文档中找不到任何可识别的一级标题，你必须返回一个空数组: []。
8. 你的回复必须是纯粹的JSON格式，不包含任何解释、注释或Markdown的代码块标记。

现在，请处理以下文档：

{{.Document}}`

// BuildSectionPrompt 构建章节提取提示词
// 纯函数，不做任何IO，相同的文档内容产生相同的提示词
func BuildSectionPrompt(document string) string {
	return strings.ReplaceAll(SectionPromptTemplate, "{{.Document}}", document)
}
