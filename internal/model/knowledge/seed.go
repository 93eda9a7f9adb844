package knowledge

import "github.com/zhouzirui/edu-guide/backend/internal/model/chat"

func usd(minK, maxK int) *Range {
	return &Range{Min: minK * 1000, Max: maxK * 1000, Unit: "USD", OpenEnded: true}
}

func usdClosed(minK, maxK int) *Range {
	return &Range{Min: minK * 1000, Max: maxK * 1000, Unit: "USD"}
}

func bullets(lines ...string) []Item {
	items := make([]Item, len(lines))
	for i, line := range lines {
		items[i] = Item{Detail: line}
	}
	return items
}

// Seed provides the curated guidance table served by the fallback composer.
func Seed() []Entry {
	return []Entry{
		{
			Field: chat.FieldEngineering,
			Topic: chat.TopicSkills,
			Title: "Engineering Skills Required",
			Sections: []Section{
				{Items: []Item{
					{Label: "Technical Skills", Detail: "Mathematics, physics, computer programming, CAD software"},
					{Label: "Problem-Solving", Detail: "Analytical thinking, logical reasoning, creative solutions"},
					{Label: "Communication", Detail: "Technical writing, presentations, teamwork"},
					{Label: "Project Management", Detail: "Time management, organization, leadership"},
					{Label: "Specialized Tools", Detail: "Industry-specific software (MATLAB, AutoCAD, SolidWorks)"},
				}},
				{Heading: "Education Requirements", Items: bullets(
					"Bachelor's degree in chosen engineering field (4 years)",
					"Master's degree often preferred for advanced positions",
					"Professional Engineer (PE) license for many roles",
					"Continuous learning through certifications",
				)},
				{Heading: "Key Competencies", Items: bullets(
					"Attention to detail and precision",
					"Ability to work under pressure",
					"Adaptability to new technologies",
					"Ethical decision-making",
				)},
			},
		},
		{
			Field: chat.FieldEngineering,
			Topic: chat.TopicCareers,
			Title: "Engineering Career Opportunities",
			Sections: []Section{
				{Items: []Item{
					{Label: "Civil Engineering", Detail: "Infrastructure design, construction management", Range: usd(80, 120)},
					{Label: "Mechanical Engineering", Detail: "Product design, manufacturing, automotive", Range: usd(75, 110)},
					{Label: "Electrical Engineering", Detail: "Power systems, electronics, telecommunications", Range: usd(80, 115)},
					{Label: "Computer Engineering", Detail: "Software development, hardware design", Range: usd(85, 130)},
					{Label: "Chemical Engineering", Detail: "Process design, pharmaceuticals, materials", Range: usd(80, 120)},
					{Label: "Aerospace Engineering", Detail: "Aircraft/spacecraft design, defense", Range: usd(85, 125)},
					{Label: "Biomedical Engineering", Detail: "Medical devices, healthcare technology", Range: usd(75, 115)},
					{Label: "Industrial Engineering", Detail: "Process optimization, quality control", Range: usd(75, 105)},
				}},
				{Heading: "Growth Industries", Items: bullets(
					"Renewable energy and sustainability",
					"Artificial intelligence and automation",
					"Biotechnology and healthcare",
					"Space exploration and defense",
				)},
				{Heading: "Career Progression", Items: bullets(
					"Entry-level engineer (0-3 years)",
					"Senior engineer/project manager (3-7 years)",
					"Engineering manager/director (7+ years)",
					"Executive leadership roles",
				)},
			},
		},
		{
			Field: chat.FieldEngineering,
			Topic: chat.TopicSalary,
			Title: "Engineering Salary Ranges",
			Sections: []Section{
				{Items: []Item{
					{Label: "Entry Level (0-3 years)", Range: usdClosed(65, 85)},
					{Label: "Mid Level (3-7 years)", Range: usdClosed(85, 120)},
					{Label: "Senior Level (7-15 years)", Range: usd(120, 160)},
					{Label: "Management/Executive", Range: usd(150, 250)},
				}},
				{Heading: "Factors Affecting Salary", Items: bullets(
					"Engineering specialization and demand",
					"Geographic location (higher in tech hubs)",
					"Educational background (advanced degrees)",
					"Professional certifications and licenses",
					"Years of experience and expertise",
				)},
				{Heading: "High-Paying Specializations", Items: []Item{
					{Label: "Petroleum engineering", Range: usd(130, 200)},
					{Label: "Computer engineering", Range: usd(110, 170)},
					{Label: "Chemical engineering", Range: usd(100, 150)},
					{Label: "Aerospace engineering", Range: usd(110, 160)},
				}},
			},
		},
		{
			Field: chat.FieldEngineering,
			Topic: chat.TopicOverview,
			Title: "Engineering Overview",
			Sections: []Section{
				{Items: []Item{
					{Label: "Field Description", Detail: "Application of scientific principles to design, build, and maintain structures, machines, and systems"},
					{Label: "Key Industries", Detail: "Technology, manufacturing, construction, energy, healthcare, aerospace"},
					{Label: "Work Environment", Detail: "Office, laboratory, field work, collaborative teams"},
					{Label: "Career Satisfaction", Detail: "High demand, good work-life balance, intellectual challenge"},
				}},
				{Heading: "Popular Engineering Branches", Items: bullets(
					"Civil Engineering: Infrastructure and construction",
					"Mechanical Engineering: Machines and manufacturing",
					"Electrical Engineering: Power and electronics",
					"Computer Engineering: Hardware-software integration",
					"Chemical Engineering: Process industries",
				)},
			},
			Closing: "Which engineering branch interests you most?",
		},
		{
			Field: chat.FieldMedicine,
			Topic: chat.TopicSkills,
			Title: "Medical Career Skills Required",
			Sections: []Section{
				{Items: []Item{
					{Label: "Clinical Skills", Detail: "Patient assessment, diagnosis, treatment planning"},
					{Label: "Technical Proficiency", Detail: "Medical equipment operation, electronic health records"},
					{Label: "Communication", Detail: "Patient interaction, medical documentation, teamwork"},
					{Label: "Critical Thinking", Detail: "Problem-solving under pressure, ethical decision-making"},
					{Label: "Empathy & Compassion", Detail: "Patient care, emotional intelligence"},
					{Label: "Continuous Learning", Detail: "Medical research, new treatments, certifications"},
				}},
				{Heading: "Education Requirements", Items: bullets(
					"Physician: 4 years medical school + 3-7 years residency",
					"Nursing: ADN (2 years) or BSN (4 years) + licensing",
					"Pharmacy: Doctor of Pharmacy (PharmD) - 6-8 years",
					"Other roles: Bachelor's or Master's degrees + certification",
				)},
			},
			Closing: "What medical career interests you most?",
		},
		{
			Field: chat.FieldMedicine,
			Topic: chat.TopicCareers,
			Title: "Medical Career Opportunities",
			Sections: []Section{
				{Items: []Item{
					{Label: "Physician (MD/DO)", Detail: "Direct patient care, diagnosis, treatment", Range: usd(200, 400)},
					{Label: "Nursing", Detail: "Patient care, emergency response, specialized care", Range: usd(60, 120)},
					{Label: "Pharmacy", Detail: "Medication management, clinical pharmacy", Range: usd(110, 130)},
					{Label: "Physical Therapy", Detail: "Rehabilitation, sports medicine", Range: usd(80, 100)},
					{Label: "Physician Assistant", Detail: "Primary care, surgery assistance", Range: usd(115, 130)},
					{Label: "Medical Laboratory Science", Detail: "Diagnostics, research", Range: usd(50, 80)},
					{Label: "Public Health", Detail: "Epidemiology, health policy", Range: usd(60, 100)},
					{Label: "Biomedical Research", Detail: "Drug development, clinical trials", Range: usd(70, 150)},
				}},
				{Heading: "Work Settings", Items: bullets(
					"Hospitals and medical centers",
					"Private practice clinics",
					"Research laboratories and universities",
					"Public health organizations",
				)},
			},
		},
		{
			Field: chat.FieldMedicine,
			Topic: chat.TopicSalary,
			Title: "Medical Career Salary Ranges",
			Sections: []Section{
				{Items: []Item{
					{Label: "Physicians", Detail: "Varies by specialty", Range: usd(200, 400)},
					{Label: "Physician Assistants", Range: usdClosed(115, 130)},
					{Label: "Pharmacists", Range: usdClosed(110, 130)},
					{Label: "Nurse Practitioners", Range: usdClosed(110, 120)},
					{Label: "Registered Nurses", Detail: "Varies by location and specialty", Range: usdClosed(60, 120)},
					{Label: "Physical Therapists", Range: usdClosed(80, 100)},
				}},
				{Heading: "Salary Factors", Items: bullets(
					"Geographic location (higher in urban areas)",
					"Years of experience and education level",
					"Specialization and certifications",
					"Employment setting (hospital vs. clinic)",
				)},
			},
		},
		{
			Field: chat.FieldMedicine,
			Topic: chat.TopicOverview,
			Title: "Medicine Career Overview",
			Sections: []Section{
				{Items: []Item{
					{Label: "Field Description", Detail: "Healthcare profession focused on preventing, diagnosing, and treating illnesses"},
					{Label: "Core Values", Detail: "Patient care, scientific inquiry, ethical practice, lifelong learning"},
					{Label: "Work Environment", Detail: "Hospitals, clinics, laboratories, research facilities"},
					{Label: "Career Satisfaction", Detail: "High purpose, intellectual challenge, helping others"},
				}},
				{Heading: "Education Pathways", Items: bullets(
					"Physician: 7-11 years post-baccalaureate",
					"Nursing: 2-4 years for entry-level positions",
					"Pharmacy: 6-8 years total education",
					"Allied health: 2-6 years depending on field",
				)},
			},
			Closing: "What aspect of medicine interests you most?",
		},
		{
			Field: chat.FieldGeneral,
			Topic: chat.TopicOverview,
			Title: "Career Guidance Overview",
			Sections: []Section{
				{Items: []Item{
					{Label: "Self-Assessment", Detail: "Identify your interests, skills, and values"},
					{Label: "Research", Detail: "Explore different career options and job markets"},
					{Label: "Education Planning", Detail: "Choose appropriate degrees and certifications"},
					{Label: "Skill Development", Detail: "Build both technical and soft skills"},
					{Label: "Networking", Detail: "Connect with professionals in your field of interest"},
				}},
				{Heading: "Key Career Factors", Items: bullets(
					"Personal interests and passions",
					"Required education and training",
					"Salary expectations and job availability",
					"Work-life balance preferences",
					"Long-term career growth potential",
				)},
			},
			Closing: "What specific career questions do you have?",
		},
		{
			Field: chat.FieldGeneral,
			Topic: chat.TopicWellbeing,
			Title: "Academic Mental Health Support",
			Sections: []Section{
				{Items: []Item{
					{Label: "Stress Management", Detail: "Practice deep breathing, meditation, regular exercise"},
					{Label: "Time Management", Detail: "Use planners, break tasks into smaller steps, prioritize work"},
					{Label: "Study Techniques", Detail: "Active recall, spaced repetition, study groups"},
					{Label: "Self-Care", Detail: "Adequate sleep, healthy eating, social connections"},
					{Label: "Seeking Help", Detail: "Talk to counselors, academic advisors, trusted friends/family"},
				}},
				{Heading: "Coping Strategies", Items: bullets(
					"Break large tasks into manageable pieces",
					"Set realistic goals and celebrate achievements",
					"Practice mindfulness and relaxation techniques",
					"Maintain a healthy work-life balance",
				)},
				{Heading: "Available Resources", Items: bullets(
					"University counseling services",
					"Academic support centers",
					"Peer support groups",
					"Crisis hotlines (if needed)",
				)},
			},
			Closing: "Remember, seeking help is a sign of strength, not weakness. You're not alone in this.",
		},
		{
			Field: chat.FieldGeneral,
			Topic: chat.TopicStudy,
			Title: "General Education Guidance",
			Sections: []Section{
				{Items: []Item{
					{Label: "Study Skills", Detail: "Effective note-taking, time management, active reading"},
					{Label: "Learning Strategies", Detail: "Different learning styles, memory techniques, critical thinking"},
					{Label: "Academic Planning", Detail: "Course selection, degree planning, GPA management"},
					{Label: "Research Skills", Detail: "Information literacy, source evaluation, academic writing"},
					{Label: "Technology Tools", Detail: "Educational apps, online resources, productivity software"},
				}},
				{Heading: "Success Strategies", Items: bullets(
					"Set clear, achievable goals",
					"Create consistent study routines",
					"Use active learning techniques",
					"Seek help when needed (tutors, advisors)",
				)},
			},
			Closing: "What specific educational challenge are you facing?",
		},
		{
			Field: chat.FieldGeneral,
			Topic: chat.TopicHelp,
			Title: "How I Can Help",
			Sections: []Section{
				{Items: []Item{
					{Label: "Career Guidance", Detail: "Skills, career paths and salary ranges for your field"},
					{Label: "Study Support", Detail: "Study techniques, time management and academic planning"},
					{Label: "Wellbeing", Detail: "Coping with exam stress, pressure and burnout"},
				}},
			},
			Closing: "Try asking something like \"what skills do I need?\" or \"how do I manage exam stress?\"",
		},
	}
}
